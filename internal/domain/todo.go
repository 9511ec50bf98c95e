package domain

import "time"

// Todo is the persisted record. CreationTime is set once by the service and
// never written again; CompletionTime is non-nil exactly when CompletionStatus
// is true (maintained by the update path, not by a DB constraint).
type Todo struct {
	ID               int64     `gorm:"primaryKey"`
	Title            string    `gorm:"not null"`
	Description      string    `gorm:"not null"`
	CreationTime     time.Time `gorm:"not null"`
	CompletionTime   *time.Time
	CompletionStatus bool `gorm:"not null;default:false"`
	EndingNote       *string
}
