package cache

import (
	"time"

	"github.com/clockline/clockline/internal/domains/projects/domain"
)

// projectSnapshot is the cached wire form of a project. The domain type
// carries no serialization tags on purpose; the cache owns its own shape so
// aggregate changes fail loudly here instead of silently corrupting entries.
type projectSnapshot struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	StartDate      time.Time     `json:"start_date"`
	PlannedEnd     *time.Time    `json:"planned_end,omitempty"`
	ActualEnd      *time.Time    `json:"actual_end,omitempty"`
	Status         domain.Status `json:"status"`
	ClientID       int64         `json:"client_id"`
	ResponsibleID  int64         `json:"responsible_id"`
	ContributorIDs []int64       `json:"contributor_ids,omitempty"`
	EstimatedValue string        `json:"estimated_value,omitempty"`
	Observations   string        `json:"observations,omitempty"`
	Notes          []domain.Note `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type pageSnapshot struct {
	Projects   []projectSnapshot `json:"projects"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func toSnapshot(p *domain.Project) projectSnapshot {
	return projectSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		StartDate:      p.StartDate,
		PlannedEnd:     p.PlannedEnd,
		ActualEnd:      p.ActualEnd,
		Status:         p.Status,
		ClientID:       p.ClientID,
		ResponsibleID:  p.ResponsibleID,
		ContributorIDs: p.ContributorIDs,
		EstimatedValue: p.EstimatedValue,
		Observations:   p.Observations,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (s projectSnapshot) toDomain() *domain.Project {
	return &domain.Project{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		StartDate:      s.StartDate,
		PlannedEnd:     s.PlannedEnd,
		ActualEnd:      s.ActualEnd,
		Status:         s.Status,
		ClientID:       s.ClientID,
		ResponsibleID:  s.ResponsibleID,
		ContributorIDs: s.ContributorIDs,
		EstimatedValue: s.EstimatedValue,
		Observations:   s.Observations,
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toSnapshotSlice(projects []*domain.Project) []projectSnapshot {
	out := make([]projectSnapshot, 0, len(projects))
	for _, p := range projects {
		out = append(out, toSnapshot(p))
	}
	return out
}

func toDomainSlice(snapshots []projectSnapshot) []*domain.Project {
	out := make([]*domain.Project, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, s.toDomain())
	}
	return out
}
