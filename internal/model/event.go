package model

import "time"

// PlanEvent is a single calendar entry of a user's day plan.
type PlanEvent struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index" json:"-"`
	Title           string    `json:"title"`
	Time            string    `json:"time"` // local "HH:MM"
	Category        string    `json:"category"`
	Completed       bool      `gorm:"default:false" json:"completed"`
	Description     string    `json:"description,omitempty"`
	Date            string    `gorm:"index" json:"date,omitempty"` // "YYYY-MM-DD"
	ReminderMinutes int       `json:"reminderMinutes,omitempty"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// DeletedEvent keeps a soft-deleted plan event. There is no purge path;
// deleted events persist until restored.
type DeletedEvent struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	UserID          string    `gorm:"index" json:"-"`
	EventID         string    `gorm:"index" json:"-"`
	Title           string    `json:"-"`
	Time            string    `json:"-"`
	Category        string    `gorm:"index" json:"-"`
	Completed       bool      `json:"-"`
	Description     string    `json:"-"`
	Date            string    `json:"-"`
	ReminderMinutes int       `json:"-"`
	DeletedAt       time.Time `json:"deletedAt"`
}

// Event reassembles the original plan event from a soft-deleted row.
func (d DeletedEvent) Event() PlanEvent {
	return PlanEvent{
		ID:              d.EventID,
		UserID:          d.UserID,
		Title:           d.Title,
		Time:            d.Time,
		Category:        d.Category,
		Completed:       d.Completed,
		Description:     d.Description,
		Date:            d.Date,
		ReminderMinutes: d.ReminderMinutes,
	}
}

// NewDeletedEvent snapshots an event into its soft-deleted form.
func NewDeletedEvent(e PlanEvent, deletedAt time.Time) DeletedEvent {
	return DeletedEvent{
		UserID:          e.UserID,
		EventID:         e.ID,
		Title:           e.Title,
		Time:            e.Time,
		Category:        e.Category,
		Completed:       e.Completed,
		Description:     e.Description,
		Date:            e.Date,
		ReminderMinutes: e.ReminderMinutes,
		DeletedAt:       deletedAt,
	}
}
