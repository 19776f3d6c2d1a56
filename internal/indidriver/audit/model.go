package audit

import "time"

// Kind classifies a recorded dispatch outcome.
type Kind string

const (
	KindAccepted          Kind = "accepted"
	KindUnknownProperty   Kind = "unknown_property"
	KindReadOnlyViolation Kind = "readonly_violation"
	KindBadFormat         Kind = "bad_format"
	KindConfigLoad        Kind = "config_load"
	KindConfigSave        Kind = "config_save"
)

// Event is one row of the dispatch_events table.
type Event struct {
	ID         string `gorm:"primaryKey;type:text;column:id" json:"id"`
	Device     string `gorm:"type:text;index:idx_dispatch_events_device;column:device" json:"device"`
	Property   string `gorm:"type:text;column:property" json:"property"`
	Kind       Kind   `gorm:"type:text;index:idx_dispatch_events_kind;column:kind" json:"kind"`
	Detail     string `gorm:"type:text;column:detail" json:"detail"`
	OccurredAt time.Time `gorm:"type:datetime;not null;index:idx_dispatch_events_occurred_at;column:occurred_at" json:"occurred_at"`
}

// TableName pins the table name regardless of gorm's pluralization rules.
func (Event) TableName() string {
	return "dispatch_events"
}
