package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-checkout/core"
	goerrors "github.com/goliatone/go-errors"
)

func validateMessage(msg core.EmailMessage) error {
	recipients := 0
	for _, to := range msg.To {
		if strings.TrimSpace(to) == "" {
			continue
		}
		if !core.IsEmail(to) {
			return badInput(fmt.Sprintf("email: invalid recipient %q", to), "to")
		}
		recipients++
	}
	if recipients == 0 {
		return badInput("email: at least one recipient is required", "to")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return badInput("email: subject is required", "subject")
	}
	if strings.TrimSpace(msg.HTML) == "" && strings.TrimSpace(msg.Text) == "" {
		return badInput("email: html or text body is required", "body")
	}
	return nil
}

func badInput(message string, field string) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(core.ErrorBadInput)
	err.WithMetadata(map[string]any{"field": field})
	return err
}

// ConfirmationMessage renders the order confirmation sent after checkout.
// Demo orders are tagged in the subject so they are never mistaken for real
// purchases.
func ConfirmationMessage(confirmation core.OrderConfirmation) core.EmailMessage {
	currency := strings.ToUpper(strings.TrimSpace(confirmation.Currency))
	if currency == "" {
		currency = "USD"
	}
	subject := fmt.Sprintf("Order Confirmation - #%s", confirmation.OrderID)
	if confirmation.IsDemo {
		subject = "[DEMO] " + subject
	}
	name := strings.TrimSpace(confirmation.CustomerName)
	if name == "" {
		name = "there"
	}
	total := fmt.Sprintf("%.2f %s", confirmation.Total, currency)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThanks for your order #%s.\nTotal: %s\n", name, confirmation.OrderID, total)
	if confirmation.IsDemo {
		text.WriteString("\nThis was a demo transaction. No payment was taken.\n")
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hi %s,</p><p>Thanks for your order <strong>#%s</strong>.</p><p>Total: %s</p>",
		html.EscapeString(name), html.EscapeString(confirmation.OrderID), html.EscapeString(total))
	if confirmation.IsDemo {
		body.WriteString("<p><em>This was a demo transaction. No payment was taken.</em></p>")
	}

	return core.EmailMessage{
		To:      []string{strings.TrimSpace(confirmation.CustomerEmail)},
		Subject: subject,
		HTML:    body.String(),
		Text:    text.String(),
		Tags: map[string]string{
			"category": "order_confirmation",
			"order_id": confirmation.OrderID,
		},
	}
}

func cloneMessage(msg core.EmailMessage) core.EmailMessage {
	out := msg
	out.To = append([]string(nil), msg.To...)
	if msg.Tags != nil {
		out.Tags = make(map[string]string, len(msg.Tags))
		for key, value := range msg.Tags {
			out.Tags[key] = value
		}
	}
	return out
}
