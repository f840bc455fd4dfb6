package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"restopos-backend/utils"

	"github.com/google/uuid"
)

// Deps are the collaborators shared by every service. Zero fields get
// working defaults.
type Deps struct {
	Locker    Locker
	Publisher Publisher
	Metrics   *utils.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
	Number    NumberFunc
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = NewLocalLocker()
	}
	if d.Publisher == nil {
		d.Publisher = NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Number == nil {
		d.Number = DefaultNumber
	}
	return d
}

// publish runs after commit. Failures are logged, never returned.
func (d Deps) publish(ctx context.Context, events ...Event) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		if e.Timestamp.IsZero() {
			e.Timestamp = d.Now()
		}
		if err := d.Publisher.Publish(ctx, e); err != nil {
			d.Logger.Warn("event publish failed", "type", e.Type, "error", err)
		}
	}
}

func actorPtr(actor uuid.UUID) *uuid.UUID {
	if actor == uuid.Nil {
		return nil
	}
	return &actor
}
