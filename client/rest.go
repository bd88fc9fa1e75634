package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Sakin08/New-web-sub002/pkg/model"
)

// API is the REST surface the store and reconciler pull from.
type API interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteAllNotifications(ctx context.Context) error
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// RestClient is the HTTP implementation of API. Idempotent GETs retry with
// exponential backoff; state-changing calls are issued exactly once and leave
// retry policy to the caller.
type RestClient struct {
	base  string
	token string
	http  *http.Client

	// RetryMaxElapsed bounds GET retries. Defaults to 15 seconds.
	RetryMaxElapsed time.Duration
}

func NewRestClient(base, token string) *RestClient {
	return &RestClient{
		base:            base,
		token:           token,
		http:            &http.Client{Timeout: 10 * time.Second},
		RetryMaxElapsed: 15 * time.Second,
	}
}

func (c *RestClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return backoff.Permanent(fmt.Errorf("request failed: status %d", resp.StatusCode))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *RestClient) get(ctx context.Context, path string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.RetryMaxElapsed
	return backoff.Retry(func() error {
		return c.do(ctx, http.MethodGet, path, out)
	}, backoff.WithContext(b, ctx))
}

func (c *RestClient) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := c.get(ctx, "/api/v1/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RestClient) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/api/v1/notifications/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *RestClient) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/notifications/"+id+"/read", nil)
}

func (c *RestClient) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/notifications/read-all", nil)
}

func (c *RestClient) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/notifications/"+id, nil)
}

func (c *RestClient) DeleteAllNotifications(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/notifications", nil)
}

func (c *RestClient) ListEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := c.get(ctx, "/api/v1/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}
