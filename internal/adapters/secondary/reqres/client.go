// Package reqres reads user profiles from a reqres.in-compatible directory API.
package reqres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

const apiKeyHeader = "x-api-key"

type profilePayload struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type profileEnvelope struct {
	Data *profilePayload `json:"data"`
}

// Client calls GET {baseURL}/api/users/{id}.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ ports.ProfileClient = (*Client)(nil)

// NewClient creates a profile client. apiKey is sent when non-empty.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	endpoint := c.baseURL + "/api/users/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build profile request: %w", apperrors.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, userID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: profile api returned %s", apperrors.ErrNetwork, resp.Status)
	}

	var envelope profileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %w", apperrors.ErrNetwork, classify(err))
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, userID)
	}

	d := envelope.Data
	return &domain.UserProfile{
		ID:        d.ID,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Avatar:    d.Avatar,
	}, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: profile api: %w", apperrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: profile api: %w", apperrors.ErrNetwork, err)
}
