// Package api provides the HTTP client for the order backend: single-record
// creation, batch order sync, profile fetch and logout. It classifies a 401
// distinctly from transport failure so the session guard can react to it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tapresto/possync/internal/errors"
	"github.com/tapresto/possync/internal/models"
)

// TokenFunc returns the current bearer token for authenticated calls.
type TokenFunc func(ctx context.Context) (string, error)

// Client talks to the order backend over HTTP.
type Client struct {
	baseURL string
	token   TokenFunc
	http    *http.Client
}

// NewClient creates a backend client. A zero timeout falls back to 30s; the
// sync engine additionally bounds each drain call with its own context.
func NewClient(baseURL string, token TokenFunc, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// syncRequest is the batch reconciliation body: every pending payload plus
// its localId as correlation field, and the batch's store id.
type syncRequest struct {
	StoreID string           `json:"storeId"`
	Orders  []syncOrderEntry `json:"orders"`
}

type syncOrderEntry struct {
	models.OrderPayload
	LocalID string `json:"_localId"`
}

type syncResponse struct {
	Results []models.SyncResult `json:"results"`
}

// SyncOrders submits the whole pending batch in one call and returns the
// per-record results. The server confirms duplicate submissions of an
// already-accepted localId idempotently, which makes at-least-once delivery
// from this client safe.
func (c *Client) SyncOrders(ctx context.Context, storeID string, orders []models.PendingOrder) ([]models.SyncResult, error) {
	req := syncRequest{
		StoreID: storeID,
		Orders:  make([]syncOrderEntry, len(orders)),
	}
	for i, rec := range orders {
		req.Orders[i] = syncOrderEntry{OrderPayload: rec.Payload, LocalID: rec.LocalID}
	}

	var resp syncResponse
	if err := c.post(ctx, "/orders/sync-orders", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CreateOrder creates a single order, used only outside the offline path.
func (c *Client) CreateOrder(ctx context.Context, payload models.OrderPayload) error {
	return c.post(ctx, "/orders/create", payload, nil)
}

type profileResponse struct {
	Store json.RawMessage `json:"store"`
}

// FetchProfile returns the authoritative store profile snapshot. A 401 is
// returned as an UNAUTHORIZED error, distinguishable from network failure.
func (c *Client) FetchProfile(ctx context.Context) (models.Snapshot, error) {
	var resp profileResponse
	if err := c.get(ctx, "/stores/profile", &resp); err != nil {
		return nil, err
	}
	return models.Snapshot(resp.Store), nil
}

// FetchItems returns the authoritative catalog item-list snapshot.
func (c *Client) FetchItems(ctx context.Context) (models.Snapshot, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/items", &raw); err != nil {
		return nil, err
	}
	return models.Snapshot(raw), nil
}

// FetchTables returns the authoritative table-list snapshot.
func (c *Client) FetchTables(ctx context.Context) (models.Snapshot, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/tables", &raw); err != nil {
		return nil, err
	}
	return models.Snapshot(raw), nil
}

// Logout tells the backend to end the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.get(ctx, "/stores/logout", nil)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to build request", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != nil {
		token, err := c.token(req.Context())
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrNetwork, fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New(errors.ErrUnauthorized, "session is no longer valid")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(errors.ErrNetwork,
			fmt.Sprintf("%s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrNetwork, "failed to decode response body", err)
	}
	return nil
}
