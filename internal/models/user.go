package model

import "time"

// User is keyed by the external identity id. Level is a cached projection of
// Experience and is rewritten together with it.
type User struct {
	ClerkID    string    `gorm:"primaryKey;size:64" json:"clerk_id"`
	Experience int64     `gorm:"not null;default:0" json:"experience"`
	Level      int       `gorm:"not null;default:1" json:"level"`
	Version    uint      `gorm:"not null;default:1" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
