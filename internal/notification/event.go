package notification

import (
	"time"

	"ride-booking/internal/data/entity"
)

// Event is the wire form of a notification on every transport.
type Event struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Type      entity.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	Link      *string                 `json:"link,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

func eventFrom(n *entity.Notification) Event {
	return Event{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}
