package model

import "time"

// Preference holds a user's reminder wish and the local times it fires at.
type Preference struct {
	UserID    string    `gorm:"primaryKey" json:"userId"`
	WishText  string    `json:"wishText"`
	Times     []string  `gorm:"serializer:json" json:"times"` // local "HH:MM"
	TZ        string    `json:"tz"`                           // IANA timezone
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Subscription is a stored Web-Push subscription, deduplicated by endpoint.
type Subscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	UserID    string    `gorm:"index" json:"userId,omitempty"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
