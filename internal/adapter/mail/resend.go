// Package mail implements the transactional email gateway on the Resend
// HTTP API.
package mail

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

const defaultBaseURL = "https://api.resend.com"

// ResendClient implements domain.Mailer. The API key is checked lazily at
// send time so a misconfiguration surfaces on the request path, not at
// startup.
type ResendClient struct {
	apiKey string
	from   string
	client *resty.Client
}

// NewResendClient constructs a mailer. baseURL is overridable for tests; an
// empty value uses the Resend production endpoint.
func NewResendClient(apiKey, from, baseURL string) *ResendClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	return &ResendClient{apiKey: apiKey, from: from, client: client}
}

// Send delivers one email and returns the provider message id. Calls are
// never retried; a failed send is surfaced to the caller.
func (c *ResendClient) Send(ctx domain.Context, to, subject, htmlBody, textBody string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: RESEND_API_KEY not set", domain.ErrConfiguration)
	}
	if to == "" {
		return "", fmt.Errorf("%w: recipient missing", domain.ErrInvalidArgument)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"from":    c.from,
			"to":      []string{to},
			"subject": subject,
			"html":    htmlBody,
			"text":    textBody,
		}).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("%w: resend: %v", domain.ErrProvider, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		if resp.StatusCode() == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: resend status 429", domain.ErrRateLimited)
		}
		return "", fmt.Errorf("%w: resend status %d: %s", domain.ErrProvider, resp.StatusCode(), resp.String())
	}

	id := gjson.Get(resp.String(), "id").String()
	if id == "" {
		return "", fmt.Errorf("%w: resend response missing message id", domain.ErrProvider)
	}
	return id, nil
}
