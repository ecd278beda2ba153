// Package notify delivers workflow notifications to users.
//
// Delivery is best-effort: a failed notification is logged and never undoes
// the change that produced it.
package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// Dispatcher delivers a notification intent to its recipient
type Dispatcher interface {
	Send(ctx context.Context, intent domain.NotificationIntent) error
}

// DispatchAll sends every intent and logs the ones that fail
func DispatchAll(ctx context.Context, d Dispatcher, logger *zap.Logger, intents []domain.NotificationIntent) {
	if d == nil {
		return
	}
	for _, intent := range intents {
		if err := d.Send(ctx, intent); err != nil {
			logger.Warn("failed to deliver notification",
				zap.String("recipient_id", intent.RecipientID.String()),
				zap.String("category", intent.Category),
				zap.String("title", intent.Title),
				zap.Error(err),
			)
		}
	}
}

// InAppDispatcher stores intents as in-app notifications
type InAppDispatcher struct {
	repo *repository.NotificationRepository
}

// NewInAppDispatcher creates a dispatcher backed by the notifications table
func NewInAppDispatcher(repo *repository.NotificationRepository) *InAppDispatcher {
	return &InAppDispatcher{repo: repo}
}

// Send stores the notification
func (d *InAppDispatcher) Send(ctx context.Context, intent domain.NotificationIntent) error {
	return d.repo.Create(ctx, &domain.Notification{
		UserID:    intent.RecipientID,
		ProjectID: intent.ProjectID,
		Category:  intent.Category,
		Title:     intent.Title,
		Message:   intent.Message,
	})
}

// MultiDispatcher fans an intent out to several dispatchers
type MultiDispatcher struct {
	dispatchers []Dispatcher
}

// NewMultiDispatcher creates a fan-out dispatcher, skipping nil entries
func NewMultiDispatcher(dispatchers ...Dispatcher) *MultiDispatcher {
	m := &MultiDispatcher{}
	for _, d := range dispatchers {
		if d != nil {
			m.dispatchers = append(m.dispatchers, d)
		}
	}
	return m
}

// Send delivers to every dispatcher, even when an earlier one fails
func (m *MultiDispatcher) Send(ctx context.Context, intent domain.NotificationIntent) error {
	var errs []error
	for _, d := range m.dispatchers {
		if err := d.Send(ctx, intent); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every intent in memory
type Recorder struct {
	mu      sync.Mutex
	intents []domain.NotificationIntent
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the intent
func (r *Recorder) Send(_ context.Context, intent domain.NotificationIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intent)
	return nil
}

// Intents returns a copy of what was recorded
func (r *Recorder) Intents() []domain.NotificationIntent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NotificationIntent(nil), r.intents...)
}

// Reset forgets everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = nil
}
