package notification

import (
	"context"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const deliveryTimeout = 5 * time.Second

// Publisher pushes an event to one delivery channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher stores a notification in the inbox and then fans it out to the
// live publishers. No failure is returned to the caller.
type Dispatcher struct {
	store      repository.NotificationRepository
	publishers map[string]Publisher
	now        func() time.Time
	log        *zap.Logger
}

func NewDispatcher(store repository.NotificationRepository, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:      store,
		publishers: make(map[string]Publisher),
		now:        time.Now,
		log:        log.With(zap.String("sink", "notification")),
	}
}

// Use registers a publisher under a name used in logs.
func (d *Dispatcher) Use(name string, p Publisher) *Dispatcher {
	d.publishers[name] = p
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, body string, link *string) {
	n := &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: d.now(),
		},
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
		Link:   link,
	}

	// Delivery outlives the request that committed the change.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	if err := d.store.Create(ctx, n); err != nil {
		d.log.Error("Failed to store notification",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("type", string(kind)),
		)
	}

	event := eventFrom(n)
	for name, p := range d.publishers {
		if err := p.Publish(ctx, event); err != nil {
			d.log.Warn("Failed to publish notification",
				zap.Error(err),
				zap.String("publisher", name),
				zap.String("notification_id", event.ID),
				zap.String("type", string(kind)),
			)
		}
	}
}
