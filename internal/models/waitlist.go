package models

import "time"

// WaitlistTableName is the table the hosted data service exposes for signups.
const WaitlistTableName = "waitlist"

type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"not null;uniqueIndex"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (WaitlistEntry) TableName() string {
	return WaitlistTableName
}
