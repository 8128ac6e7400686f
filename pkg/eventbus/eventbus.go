// Package eventbus defines the contract for publishing engine events.
package eventbus

import (
	"context"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Bus publishes engine events to subscribed handlers.
type Bus interface {
	Publish(ctx context.Context, event domain.Event) error
	Subscribe(eventType string, handler func(context.Context, domain.Event))
}
