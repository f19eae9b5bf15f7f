package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists project aggregates in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB
// lifecycle; schema setup lives in platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	if now != nil {
		r.now = now
	}
	return r
}

// projectRecord maps the project aggregate to a relational table. Notes are
// stored as a JSON column; contributors as a native bigint array.
type projectRecord struct {
	ID             int64          `gorm:"primaryKey;column:id"`
	Name           string         `gorm:"column:name;size:200;index"`
	Description    string         `gorm:"column:description;type:text"`
	StartDate      time.Time      `gorm:"column:start_date;type:date"`
	PlannedEnd     *time.Time     `gorm:"column:planned_end;type:date;index"`
	ActualEnd      *time.Time     `gorm:"column:actual_end;type:date"`
	Status         string         `gorm:"column:status;type:varchar(32);index:idx_projects_status_client"`
	ClientID       int64          `gorm:"column:client_id;index:idx_projects_status_client"`
	ResponsibleID  int64          `gorm:"column:responsible_id;index"`
	ContributorIDs pq.Int64Array  `gorm:"column:contributor_ids;type:bigint[]"`
	EstimatedValue string         `gorm:"column:estimated_value;size:20"`
	Observations   string         `gorm:"column:observations;type:text"`
	Notes          []domain.Note  `gorm:"column:notes;serializer:json"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (projectRecord) TableName() string { return "projects" }

// Save inserts new aggregates and fully rewrites existing ones. Updates pass
// the record struct with an explicit column list: Select forces cleared
// fields through, and the struct path keeps gorm's field serializers (the
// notes JSON column) engaged.
func (r *Repository) Save(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.New("project is nil")
	}

	if project.ID == 0 {
		record := toRecord(project)
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, storageErr("create", 0, err)
		}
		return r.GetByID(ctx, record.ID)
	}

	record := toRecord(project)
	record.UpdatedAt = r.now()
	result := r.db.WithContext(ctx).
		Model(&projectRecord{}).
		Where("id = ?", project.ID).
		Select("name", "description", "start_date", "planned_end", "actual_end",
			"status", "client_id", "responsible_id", "contributor_ids",
			"estimated_value", "observations", "notes", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, storageErr("update", project.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, project.ID)
}

// GetByID fetches a live project by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record projectRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, storageErr("get", id, err)
	}
	return record.toDomain(), nil
}

// List pages live projects by offset, ordered by ID.
func (r *Repository) List(ctx context.Context, f ports.ListFilter, skip, limit int) ([]*domain.Project, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []projectRecord
	query := applyFilter(r.db.WithContext(ctx), f).
		Order("id").
		Offset(skip).
		Limit(capLimit(limit))
	if err := query.Find(&records).Error; err != nil {
		return nil, storageErr("list", 0, err)
	}
	return toDomainSlice(records), nil
}

// ListAfter pages live projects by keyset. It fetches one extra row to decide
// whether another page exists without a separate count query.
func (r *Repository) ListAfter(ctx context.Context, f ports.ListFilter, afterID int64, limit int) ([]*domain.Project, *int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, nil, err
	}
	limit = capLimit(limit)

	var records []projectRecord
	query := applyFilter(r.db.WithContext(ctx), f).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit + 1)
	if err := query.Find(&records).Error; err != nil {
		return nil, nil, storageErr("list_after", afterID, err)
	}
	if len(records) <= limit {
		return toDomainSlice(records), nil, nil
	}
	records = records[:limit]
	nextID := records[len(records)-1].ID
	return toDomainSlice(records), &nextID, nil
}

// Overdue returns in-progress projects whose planned end is in the past.
func (r *Repository) Overdue(ctx context.Context) ([]*domain.Project, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	today := dateOf(r.now())
	var records []projectRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusInProgress)).
		Where("planned_end IS NOT NULL AND planned_end < ?", today).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("overdue", 0, err)
	}
	return toDomainSlice(records), nil
}

// CountByStatus counts live projects in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&projectRecord{}).
		Where("status = ?", string(status)).
		Count(&n).Error
	if err != nil {
		return 0, storageErr("count", 0, err)
	}
	return n, nil
}

// Delete soft-deletes the project. GORM stamps deleted_at; subsequent reads
// skip the row automatically.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).Delete(&projectRecord{}, id)
	if result.Error != nil {
		return false, storageErr("delete", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Purge physically removes the project and every dependent row. Children go
// first so the cascade never orphans anything if it is interrupted; the whole
// cascade runs in one transaction either way.
func (r *Repository) Purge(ctx context.Context, id int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			sql  string
			args []any
		}{
			{"DELETE FROM attachments WHERE checkin_id IN (SELECT id FROM checkins WHERE project_id = ?)", []any{id}},
			{"DELETE FROM checkin_tasks WHERE checkin_id IN (SELECT id FROM checkins WHERE project_id = ?)", []any{id}},
			{"DELETE FROM checkins WHERE project_id = ?", []any{id}},
			{"DELETE FROM sprint_tasks WHERE sprint_id IN (SELECT id FROM sprints WHERE project_id = ?)", []any{id}},
			{"DELETE FROM sprints WHERE project_id = ?", []any{id}},
			{"DELETE FROM audit_entries WHERE table_name = ? AND record_id = ?", []any{"projects", id}},
		}
		for _, step := range steps {
			if err := tx.Exec(step.sql, step.args...).Error; err != nil {
				return err
			}
		}
		result := tx.Unscoped().Delete(&projectRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, storageErr("purge", id, err)
	}
	return removed, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres project repository not configured")
	}
	return nil
}

func applyFilter(db *gorm.DB, f ports.ListFilter) *gorm.DB {
	if f.Status != nil {
		db = db.Where("status = ?", string(*f.Status))
	}
	if f.ClientID != nil {
		db = db.Where("client_id = ?", *f.ClientID)
	}
	if f.ResponsibleID != nil {
		db = db.Where("responsible_id = ?", *f.ResponsibleID)
	}
	return db
}

func capLimit(limit int) int {
	if limit <= 0 {
		return ports.DefaultPageSize
	}
	if limit > ports.MaxPageSize {
		return ports.MaxPageSize
	}
	return limit
}

func storageErr(op string, id int64, err error) error {
	return &ports.StorageError{Op: op, ProjectID: id, Err: err}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toRecord(p *domain.Project) projectRecord {
	rec := projectRecord{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		StartDate:      p.StartDate,
		PlannedEnd:     p.PlannedEnd,
		ActualEnd:      p.ActualEnd,
		Status:         string(p.Status),
		ClientID:       p.ClientID,
		ResponsibleID:  p.ResponsibleID,
		ContributorIDs: pq.Int64Array(p.ContributorIDs),
		EstimatedValue: p.EstimatedValue,
		Observations:   p.Observations,
		Notes:          p.Notes,
	}
	return rec
}

func (r projectRecord) toDomain() *domain.Project {
	p := &domain.Project{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		StartDate:      r.StartDate,
		PlannedEnd:     r.PlannedEnd,
		ActualEnd:      r.ActualEnd,
		Status:         domain.Status(r.Status),
		ClientID:       r.ClientID,
		ResponsibleID:  r.ResponsibleID,
		ContributorIDs: []int64(r.ContributorIDs),
		EstimatedValue: r.EstimatedValue,
		Observations:   r.Observations,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.DeletedAt.Valid {
		deleted := r.DeletedAt.Time
		p.DeletedAt = &deleted
	}
	return p
}

func toDomainSlice(records []projectRecord) []*domain.Project {
	projects := make([]*domain.Project, 0, len(records))
	for i := range records {
		projects = append(projects, records[i].toDomain())
	}
	return projects
}
