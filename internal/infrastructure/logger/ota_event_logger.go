package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DeviceOTATransitionEvent is an audit row appended for every applied
// participation transition.
type DeviceOTATransitionEvent struct {
	ID          uint `gorm:"primaryKey"`
	TaskID      string
	DeviceID    string
	DeviceOTAID string
	OldStatus   string
	NewStatus   string
	Description string
	Source      string // telemetry | operator
	Timestamp   time.Time
}

type TaskStatusEvent struct {
	ID        uint `gorm:"primaryKey"`
	TaskID    string
	OldStatus string
	NewStatus string
	Timestamp time.Time
}

type OTAEventLogger interface {
	LogTransition(ctx context.Context, event DeviceOTATransitionEvent) error
	LogTaskStatus(ctx context.Context, event TaskStatusEvent) error
}

type PGOTAEventLogger struct {
	db *gorm.DB
}

func NewPGOTAEventLogger(db *gorm.DB) *PGOTAEventLogger {
	db.AutoMigrate(&DeviceOTATransitionEvent{}, &TaskStatusEvent{})
	return &PGOTAEventLogger{db: db}
}

func (l *PGOTAEventLogger) LogTransition(ctx context.Context, event DeviceOTATransitionEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}

func (l *PGOTAEventLogger) LogTaskStatus(ctx context.Context, event TaskStatusEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}
