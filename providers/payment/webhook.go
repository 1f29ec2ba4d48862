package payment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// HandleWebhook verifies and dispatches a gateway event. Any payload that
// parses is accepted regardless of its type.
func (s *ProductionService) HandleWebhook(ctx context.Context, payload []byte, signature string) (core.WebhookEvent, error) {
	if strings.TrimSpace(signature) == "" {
		return core.WebhookEvent{}, core.NewWebhookError("Missing webhook signature", nil)
	}
	if strings.TrimSpace(s.cfg.WebhookSecret) != "" {
		if err := s.verifier.Verify(payload, signature); err != nil {
			return core.WebhookEvent{}, core.NewWebhookError("Invalid webhook signature", err)
		}
	}

	var event core.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return core.WebhookEvent{}, core.NewWebhookError("Invalid webhook payload", err)
	}

	startedAt := time.Now()
	if s.isReplay(ctx, event) {
		s.logger.Debug("duplicate webhook event skipped", "event_id", event.ID, "type", event.Type)
		s.observer.ObserveOperation(ctx, startedAt, "webhook_replay", nil, map[string]any{
			"engine":     EngineProduction,
			"event_type": event.Type,
		})
		return event, nil
	}
	switch event.Type {
	case EventPaymentSucceeded:
		s.logger.Info("payment succeeded", "event_id", event.ID, "intent_id", objectID(event))
	case EventPaymentFailed:
		s.logger.Warn("payment failed", "event_id", event.ID, "intent_id", objectID(event))
	default:
		s.logger.Debug("unhandled webhook event", "event_id", event.ID, "type", event.Type)
	}
	for _, handler := range s.handlers[event.Type] {
		if err := handler(ctx, event); err != nil {
			s.logger.Error("webhook handler failed", "event_id", event.ID, "type", event.Type, "error", err.Error())
		}
	}
	s.observer.ObserveOperation(ctx, startedAt, "handle_webhook", nil, map[string]any{
		"engine":     EngineProduction,
		"event_type": event.Type,
	})
	return event, nil
}

// ProcessWebhook is HandleWebhook for callers that branch on a result value.
func (s *ProductionService) ProcessWebhook(ctx context.Context, payload []byte, signature string) core.WebhookResult {
	event, err := s.HandleWebhook(ctx, payload, signature)
	if err != nil {
		return core.WebhookResult{Error: err.Error()}
	}
	return core.WebhookResult{Success: true, Event: &event}
}

// isReplay fails open: a ledger error lets the event through.
func (s *ProductionService) isReplay(ctx context.Context, event core.WebhookEvent) bool {
	if s.replay == nil || strings.TrimSpace(event.ID) == "" {
		return false
	}
	claimed, err := s.replay.Claim(ctx, "stripe:"+event.ID, 0)
	if err != nil {
		s.logger.Warn("webhook replay check failed", "event_id", event.ID, "error", err.Error())
		return false
	}
	return !claimed
}

func objectID(event core.WebhookEvent) string {
	object, ok := event.Data["object"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := object["id"].(string)
	return id
}
