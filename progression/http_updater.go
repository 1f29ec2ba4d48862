package progression

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/transport"
)

// DefaultStatusPath is the order-status-update route, relative to the base URL.
const DefaultStatusPath = "/api/orders/%s/status"

// HTTPStatusUpdater applies transitions through the order-status-update
// endpoint, sending {status, note} and reading back the updated order.
type HTTPStatusUpdater struct {
	baseURL string
	path    string
	token   string
	rest    *transport.RESTAdapter
}

type HTTPUpdaterOption func(*HTTPStatusUpdater)

// WithStatusPath overrides the route template; %s receives the order id.
func WithStatusPath(path string) HTTPUpdaterOption {
	return func(u *HTTPStatusUpdater) {
		if strings.Contains(path, "%s") {
			u.path = path
		}
	}
}

// WithBearerToken authenticates each update request.
func WithBearerToken(token string) HTTPUpdaterOption {
	return func(u *HTTPStatusUpdater) {
		u.token = strings.TrimSpace(token)
	}
}

func WithRESTAdapter(rest *transport.RESTAdapter) HTTPUpdaterOption {
	return func(u *HTTPStatusUpdater) {
		if rest != nil {
			u.rest = rest
		}
	}
}

func NewHTTPStatusUpdater(baseURL string, opts ...HTTPUpdaterOption) (*HTTPStatusUpdater, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("progression: status endpoint base url %q is invalid", baseURL)
	}
	updater := &HTTPStatusUpdater{
		baseURL: baseURL,
		path:    DefaultStatusPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(updater)
		}
	}
	if updater.rest == nil {
		updater.rest = transport.NewRESTAdapter(nil)
	}
	return updater, nil
}

type statusUpdateResponse struct {
	core.Order
	Wrapped *core.Order `json:"order"`
}

func (u *HTTPStatusUpdater) UpdateOrderStatus(ctx context.Context, orderID string, update core.StatusUpdate) (core.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return core.Order{}, fmt.Errorf("progression: order id is required")
	}
	headers := map[string]string{}
	if u.token != "" {
		headers["Authorization"] = "Bearer " + u.token
	}
	var out statusUpdateResponse
	_, err := u.rest.DoJSON(ctx, transport.Request{
		Method:  http.MethodPatch,
		URL:     u.baseURL + fmt.Sprintf(u.path, url.PathEscape(orderID)),
		Headers: headers,
	}, update, &out)
	if err != nil {
		return core.Order{}, err
	}
	order := out.Order
	if out.Wrapped != nil {
		order = *out.Wrapped
	}
	if order.ID == "" {
		order.ID = orderID
	}
	return order, nil
}

var _ core.StatusUpdater = (*HTTPStatusUpdater)(nil)
