package model

import "time"

// AuditEntry is one append-only record of an administrative edit to a job.
type AuditEntry struct {
	ID        string    `json:"id"         db:"id"`
	JobID     string    `json:"job_id"     db:"job_id"`
	Actor     string    `json:"actor"      db:"actor"`
	Field     string    `json:"field"      db:"field"`
	OldValue  string    `json:"old_value"  db:"old_value"`
	NewValue  string    `json:"new_value"  db:"new_value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
