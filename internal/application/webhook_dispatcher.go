package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
)

// WebhookHandler processes webhook events for the topics it declares.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher fans a verified webhook event out to registered
// handlers. Handler failures are logged and swallowed: returning an error to
// the platform would make it retry delivery indefinitely.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler appends a handler.
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch routes an event to every handler claiming its topic.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) {
	handled := false
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			d.logger.Error().Err(err).
				Str("topic", event.Topic).
				Str("shop", event.Shop).
				Msg("Webhook handler failed")
		}
	}

	if !handled {
		d.logger.Debug().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Msg("No handler registered for webhook topic")
	}
}
