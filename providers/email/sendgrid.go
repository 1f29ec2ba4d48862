package email

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/transport"
	"github.com/google/uuid"
)

const EngineSendGrid = "SendGridEmailService"

type SendGridService struct {
	apiKey   string
	from     string
	fromName string
	endpoint string
	rest     *transport.RESTAdapter
	logger   core.Logger
	observer core.Observer
}

// NewSendGridService requires an "SG." API key and a valid sender address.
func NewSendGridService(cfg core.EmailConfig, opts ...Option) (*SendGridService, error) {
	apiKey := strings.TrimSpace(cfg.SendGrid.APIKey)
	if !strings.HasPrefix(apiKey, "SG.") {
		return nil, core.NewServiceConstructionError(core.CapabilityEmail, core.EmailServiceSendGrid, "SendGrid API key must start with 'SG.'")
	}
	from := strings.TrimSpace(cfg.SendGrid.FromEmail)
	if !core.IsEmail(from) {
		return nil, core.NewServiceConstructionError(core.CapabilityEmail, core.EmailServiceSendGrid, "SendGrid from email must be a valid email address")
	}
	resolved := buildOptions(opts)
	endpoint := strings.TrimSpace(resolved.endpoint)
	if endpoint == "" {
		endpoint = DefaultSendGridEndpoint
	}
	return &SendGridService{
		apiKey:   apiKey,
		from:     from,
		fromName: strings.TrimSpace(cfg.FromName),
		endpoint: endpoint,
		rest:     resolved.rest,
		logger:   resolved.logger,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}, nil
}

func (*SendGridService) Provider() string {
	return core.EmailServiceSendGrid
}

func (*SendGridService) EngineName() string {
	return EngineSendGrid
}

func (*SendGridService) IsDemo() bool {
	return false
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	Categories       []string                  `json:"categories,omitempty"`
	CustomArgs       map[string]string         `json:"custom_args,omitempty"`
}

func (s *SendGridService) Send(ctx context.Context, msg core.EmailMessage) (core.EmailResult, error) {
	startedAt := time.Now()
	result, err := s.send(ctx, msg)
	s.observer.ObserveOperation(ctx, startedAt, "send", err, map[string]any{
		"provider":   core.EmailServiceSendGrid,
		"message_id": result.MessageID,
	})
	return result, err
}

func (s *SendGridService) send(ctx context.Context, msg core.EmailMessage) (core.EmailResult, error) {
	if err := validateMessage(msg); err != nil {
		return core.EmailResult{Provider: core.EmailServiceSendGrid, Error: err.Error()}, err
	}
	res, err := s.rest.DoJSON(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    s.endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + s.apiKey,
		},
	}, s.payload(msg), nil)
	if err != nil {
		s.logger.Error("sendgrid send failed", "subject", msg.Subject, "error", err.Error())
		return core.EmailResult{Provider: core.EmailServiceSendGrid, Error: err.Error()}, err
	}
	messageID := strings.TrimSpace(res.Headers["X-Message-Id"])
	if messageID == "" {
		messageID = "sg_" + uuid.NewString()
	}
	return core.EmailResult{Success: true, MessageID: messageID, Provider: core.EmailServiceSendGrid}, nil
}

func (s *SendGridService) payload(msg core.EmailMessage) sendGridMail {
	to := make([]sendGridAddress, 0, len(msg.To))
	for _, address := range msg.To {
		if address = strings.TrimSpace(address); address != "" {
			to = append(to, sendGridAddress{Email: address})
		}
	}
	content := make([]sendGridContent, 0, 2)
	if strings.TrimSpace(msg.Text) != "" {
		content = append(content, sendGridContent{Type: "text/plain", Value: msg.Text})
	}
	if strings.TrimSpace(msg.HTML) != "" {
		content = append(content, sendGridContent{Type: "text/html", Value: msg.HTML})
	}
	mail := sendGridMail{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: s.from, Name: s.fromName},
		Subject:          msg.Subject,
		Content:          content,
	}
	if category := strings.TrimSpace(msg.Tags["category"]); category != "" {
		mail.Categories = []string{category}
	}
	if len(msg.Tags) > 0 {
		mail.CustomArgs = cloneMessage(msg).Tags
	}
	return mail
}

func (s *SendGridService) SendOrderConfirmation(ctx context.Context, confirmation core.OrderConfirmation) (core.EmailResult, error) {
	return s.Send(ctx, ConfirmationMessage(confirmation))
}

var (
	_ core.EmailService = (*SendGridService)(nil)
	_ core.Engine       = (*SendGridService)(nil)
)
