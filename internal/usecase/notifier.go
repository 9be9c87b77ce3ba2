package usecase

import (
	"context"

	"ride-booking/internal/data/entity"

	"github.com/google/uuid"
)

// Notifier delivers user notifications. Implementations swallow their own
// failures; a notification never rolls back the operation that produced it.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, body string, link *string)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uuid.UUID, entity.NotificationType, string, string, *string) {}

type notice struct {
	userID uuid.UUID
	kind   entity.NotificationType
	title  string
	body   string
	link   *string
}

// outbox collects notices while a transaction runs so they can be sent once
// it has committed.
type outbox struct {
	notices []notice
}

func (o *outbox) add(userID uuid.UUID, kind entity.NotificationType, title, body string, link *string) {
	o.notices = append(o.notices, notice{userID: userID, kind: kind, title: title, body: body, link: link})
}

// reset drops anything queued by an earlier, rolled back attempt.
func (o *outbox) reset() {
	o.notices = o.notices[:0]
}

func (o *outbox) flush(ctx context.Context, n Notifier) {
	for _, m := range o.notices {
		n.Notify(ctx, m.userID, m.kind, m.title, m.body, m.link)
	}
	o.notices = nil
}

func rideLink(rideID uuid.UUID, suffix string) *string {
	link := "/rides/" + rideID.String() + suffix
	return &link
}
