package model

import "time"

// GateState is the single gate-control record. SlotIndex is -1 when the gate
// is closed and not attributed to any slot.
type GateState struct {
	ID        int  `gorm:"primaryKey"`
	Open      bool `gorm:"not null"`
	SlotIndex int  `gorm:"not null"`
	UpdatedAt time.Time
}
