package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/Kaltroniz/Smart-Parking-System/internal/fleet"
)

// BookingAPI is the slice of the booking service the handlers call.
type BookingAPI interface {
	Request(ctx context.Context, uid string, index int, paymentRef string) error
	ResolveGateScan(ctx context.Context, uid string, result fleet.ScanResult) (fleet.ScanOutcome, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	table    *fleet.Table
	bookings BookingAPI
	db       *gorm.DB
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(table *fleet.Table, bookings BookingAPI, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		table:    table,
		bookings: bookings,
		db:       db,
		webpush:  webpushOptions,
	}
}
