package notification

import (
	"context"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/Kaltroniz/Smart-Parking-System/internal/model"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	// NoticeExpired reports that a reservation ran out its window.
	NoticeExpired NoticeKind = "expired"
	// NoticeCompensated reports that sensor-confirmed occupancy released a
	// reservation and pulsed the gate.
	NoticeCompensated NoticeKind = "compensated"
	// NoticeStoreError reports a store feed failure.
	NoticeStoreError NoticeKind = "store_error"
)

// Notice is one transient user-facing message. SlotIndex below zero means the
// notice is not bound to a slot and goes to every subscriber.
type Notice struct {
	Kind      NoticeKind
	SlotIndex int
	Message   string
}

// NoticeSender defines the interface for sending a web push notification.
type NoticeSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NoticeSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for delivering notices.
type WorkerPool struct {
	size    int
	jobs    chan Notice
	db      *gorm.DB
	webpush *webpush.Options
	sender  NoticeSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Notice, size), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notice worker %d started", id)
	for {
		select {
		case notice := <-wp.jobs:
			wp.deliver(ctx, notice)
		case <-ctx.Done():
			log.Printf("Notice worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a notice to the worker pool.
func (wp *WorkerPool) Dispatch(notice Notice) {
	wp.jobs <- notice
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Notice {
	return wp.jobs
}

// deliver fetches the matching subscriptions and pushes the notice to each.
func (wp *WorkerPool) deliver(ctx context.Context, notice Notice) {
	var subscriptions []model.PushSubscription
	q := wp.db.WithContext(ctx)
	if notice.SlotIndex >= 0 {
		q = q.Joins("JOIN subscription_slot_mapping ssm ON ssm.push_subscription_endpoint = push_subscriptions.endpoint").
			Where("ssm.slot_status_slot_index = ?", notice.SlotIndex)
	}
	if err := q.Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for notice %q slot %d: %v", notice.Kind, notice.SlotIndex, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notices (%s) for slot %d", len(subscriptions), notice.Kind, notice.SlotIndex)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(notice.Message))
	}
}

// send pushes a single notice payload to one subscription.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notice to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
