package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType enumerates the kinds of work a Job can represent.
type JobType string

const (
	JobTypePlan     JobType = "plan"
	JobTypeAudio    JobType = "audio"
	JobTypeVocals   JobType = "vocals"
	JobTypeMix      JobType = "mix"
	JobTypeVideo    JobType = "video"
	JobTypePipeline JobType = "pipeline"
)

// JobStatus enumerates the lifecycle states of a Job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// DefaultMaxAttempts and DefaultBackoffMs are the enqueue-time defaults
// named in spec.md §3.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffMs   = 2000
)

// Job is the persistent unit of work driving the generation pipeline.
// A Job in JobStatusRunning has exactly one assigned worker; attempts never
// exceeds max_attempts; completed_at is set iff status is terminal.
type Job struct {
	ID            string     `gorm:"primaryKey;type:uuid;default:uuid_generate_v4()" json:"id"`
	Type          JobType    `gorm:"type:varchar(32);not null;index:idx_jobs_claim,priority:2" json:"type"`
	Status        JobStatus  `gorm:"type:varchar(16);not null;index:idx_jobs_claim,priority:1;index:idx_jobs_dedupe,priority:2" json:"status"`
	Params        JSONMap    `gorm:"type:jsonb;not null" json:"params"`
	Result        JSONMap    `gorm:"type:jsonb" json:"result,omitempty"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts   int        `gorm:"not null;default:3" json:"maxAttempts"`
	BackoffMs     int64      `gorm:"not null;default:2000" json:"backoffMs"`
	AvailableAt   time.Time  `gorm:"not null;index:idx_jobs_claim,priority:3" json:"availableAt"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `gorm:"index:idx_jobs_dedupe,priority:3" json:"completedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;index:idx_jobs_claim,priority:4" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updatedAt"`
	Error         string     `gorm:"type:text" json:"error,omitempty"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	StatusMessage string     `gorm:"type:text" json:"message,omitempty"`
	DedupeKey     string     `gorm:"type:varchar(64);not null;index:idx_jobs_dedupe,priority:1" json:"-"`
	ParentID      *string    `gorm:"type:uuid;index" json:"parentId,omitempty"`
	ApiKeyID      string     `gorm:"type:uuid;not null;index" json:"-"`
	LastSuccessAt *time.Time `json:"-"`
}

func (Job) TableName() string { return "jobs" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// don't depend on a Postgres-only column default.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether the job has reached a terminal status.
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Eligible reports whether the job is queued and ready to run at `now`,
// per spec.md §3's eligibility invariant.
func (j *Job) Eligible(now time.Time) bool {
	return j.Status == JobStatusQueued && !j.AvailableAt.After(now)
}
