package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
)

// FacebookProfile is the subset of the Graph API /me object we use.
type FacebookProfile struct {
	ID   string
	Name string
}

// FacebookVerifier resolves a Facebook user access token to its profile.
type FacebookVerifier interface {
	Me(ctx context.Context, accessToken string) (*FacebookProfile, error)
}

// FacebookClient calls the Graph API behind a circuit breaker.
type FacebookClient struct {
	graphURL  string
	appSecret string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker[*FacebookProfile]
}

// NewFacebookClient returns a client, or nil when no Graph URL is configured.
func NewFacebookClient(cfg config.FacebookConfig) *FacebookClient {
	if cfg.GraphURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	name := "facebook-graph"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*FacebookProfile](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a rejected user token says nothing about Graph API health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidCredentials)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &FacebookClient{
		graphURL:  strings.TrimRight(cfg.GraphURL, "/"),
		appSecret: cfg.AppSecret,
		http:      &http.Client{Timeout: timeout},
		cb:        cb,
	}
}

// Me verifies accessToken and returns the owner's profile.
func (c *FacebookClient) Me(ctx context.Context, accessToken string) (*FacebookProfile, error) {
	profile, err := c.cb.Execute(func() (*FacebookProfile, error) {
		return c.me(ctx, accessToken)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("facebook: %w", ErrUnavailable)
	}
	return profile, err
}

func (c *FacebookClient) me(ctx context.Context, accessToken string) (*FacebookProfile, error) {
	q := url.Values{}
	q.Set("fields", "id,name")
	q.Set("access_token", accessToken)
	if c.appSecret != "" {
		q.Set("appsecret_proof", appSecretProof(accessToken, c.appSecret))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+"/me?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("facebook read: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("facebook: unexpected response (status %d)", resp.StatusCode)
	}

	doc := gjson.ParseBytes(body)
	if apiErr := doc.Get("error"); apiErr.Exists() {
		// OAuthException covers expired, revoked and forged tokens
		if apiErr.Get("type").String() == "OAuthException" || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("facebook: %s: %w", apiErr.Get("message").String(), ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("facebook: %s", apiErr.Get("message").String())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook: status %d", resp.StatusCode)
	}

	id := doc.Get("id").String()
	if id == "" {
		return nil, errors.New("facebook: response without id")
	}
	return &FacebookProfile{ID: id, Name: doc.Get("name").String()}, nil
}

func appSecretProof(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
