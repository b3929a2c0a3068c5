// Package postal looks up Indian pincodes against an India Post compatible
// API (GET {base}/pincode/{pin}).
package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public India Post endpoint.
const DefaultBaseURL = "https://api.postalpincode.in"

type postOffice struct {
	Name     string `json:"Name"`
	District string `json:"District"`
	State    string `json:"State"`
}

type lookupResponse struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []postOffice `json:"PostOffice"`
}

// Client implements address.Lookup.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient builds a lookup client. Requests are traced through otelhttp and
// bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Lookup returns the post offices registered for pincode. "Error" responses
// from the API mean no candidates; transport or decode problems are reported
// as address.ErrLookupUnavailable.
func (c *Client) Lookup(ctx context.Context, pincode string) ([]address.Locality, error) {
	endpoint := c.baseURL + "/pincode/" + url.PathEscape(pincode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", address.ErrLookupUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("postal lookup failed", zap.String("pincode", pincode), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", address.ErrLookupUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.log.Warn("postal lookup rejected", zap.String("pincode", pincode), zap.Int("status", res.StatusCode))
		return nil, fmt.Errorf("%w: status %d", address.ErrLookupUnavailable, res.StatusCode)
	}

	var body []lookupResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		c.log.Warn("postal lookup decode", zap.String("pincode", pincode), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", address.ErrLookupUnavailable, err)
	}

	var out []address.Locality
	for _, r := range body {
		if !strings.EqualFold(r.Status, "Success") {
			continue
		}
		for _, po := range r.PostOffice {
			out = append(out, address.Locality{
				Name:     strings.TrimSpace(po.Name),
				District: strings.TrimSpace(po.District),
				State:    strings.TrimSpace(po.State),
			})
		}
	}
	return out, nil
}
