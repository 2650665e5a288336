package port

import "context"

type EventPublisher interface {
	// Publish sends payload under eventType. Delivery is best effort.
	Publish(ctx context.Context, eventType string, payload any) error
}
