package model

import "time"

// SlotStatus is the sensor-reported state of one physical slot.
// Rows are written by the hardware bridge; this service only reads them.
type SlotStatus struct {
	SlotIndex int    `gorm:"primaryKey;autoIncrement:false"`
	Status    string `gorm:"size:32;not null"`
	UpdatedAt time.Time
}
