package model

import "time"

// BookingRecord is a reservation held on one slot. A booking's identity is
// the slot index: at most one record per slot at any time.
type BookingRecord struct {
	SlotIndex int    `gorm:"primaryKey;autoIncrement:false"`
	UID       string `gorm:"column:uid;size:128;not null"`
	StartTime int64  `gorm:"not null"` // epoch millis
	CreatedAt time.Time
}
