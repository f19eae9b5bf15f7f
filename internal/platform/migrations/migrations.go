package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the projects bounded context and its dependent
// tables. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&projectRecord{},
		&checkinRecord{},
		&checkinTaskRecord{},
		&attachmentRecord{},
		&sprintRecord{},
		&sprintTaskRecord{},
		&auditEntryRecord{},
	)
}

// Project schema mirrors the projects Postgres adapter.
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
	Notes          string         `gorm:"column:notes;type:jsonb"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (projectRecord) TableName() string { return "projects" }

// Daily progress reports, owned by a project.
type checkinRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	ProjectID int64     `gorm:"column:project_id;index"`
	UserID    int64     `gorm:"column:user_id;index"`
	Day       time.Time `gorm:"column:day;type:date"`
	Summary   string    `gorm:"column:summary;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (checkinRecord) TableName() string { return "checkins" }

type checkinTaskRecord struct {
	ID          int64   `gorm:"primaryKey;column:id"`
	CheckinID   int64   `gorm:"column:checkin_id;index"`
	Description string  `gorm:"column:description;type:text"`
	HoursSpent  float64 `gorm:"column:hours_spent"`
}

func (checkinTaskRecord) TableName() string { return "checkin_tasks" }

type attachmentRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	CheckinID int64     `gorm:"column:checkin_id;index"`
	FileName  string    `gorm:"column:file_name;size:255"`
	FilePath  string    `gorm:"column:file_path;size:512"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (attachmentRecord) TableName() string { return "attachments" }

type sprintRecord struct {
	ID        int64      `gorm:"primaryKey;column:id"`
	ProjectID int64      `gorm:"column:project_id;index"`
	Name      string     `gorm:"column:name;size:200"`
	StartDate time.Time  `gorm:"column:start_date;type:date"`
	EndDate   *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (sprintRecord) TableName() string { return "sprints" }

type sprintTaskRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	SprintID    int64  `gorm:"column:sprint_id;index"`
	Title       string `gorm:"column:title;size:255"`
	Status      string `gorm:"column:status;type:varchar(32)"`
	AssigneeID  *int64 `gorm:"column:assignee_id"`
	Description string `gorm:"column:description;type:text"`
}

func (sprintTaskRecord) TableName() string { return "sprint_tasks" }

// Audit trail rows reference their subject by table name plus record ID.
// The Go field cannot be called TableName without clashing with the gorm
// naming hook below, hence Subject.
type auditEntryRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Subject   string    `gorm:"column:table_name;size:64;index:idx_audit_subject"`
	RecordID  int64     `gorm:"column:record_id;index:idx_audit_subject"`
	UserID    int64     `gorm:"column:user_id"`
	Action    string    `gorm:"column:action;size:32"`
	Detail    string    `gorm:"column:detail;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (auditEntryRecord) TableName() string { return "audit_entries" }
