package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 30 * time.Second
	refreshPath    = "/token/refresh/"
)

var (
	errNoRefreshToken     = errors.New("no refresh token stored")
	errCredentialsCleared = errors.New("credentials cleared during refresh")
)

// Options configures a backend client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the account backend. It attaches the stored access token
// to every request and, on a 401, refreshes the token once and replays the
// request. Concurrent requests that hit a 401 share a single refresh.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     domain.TokenStore
	logger     *slog.Logger

	refreshGroup singleflight.Group

	mu        sync.RWMutex // Protects onExpired
	onExpired func()
}

// NewClient creates a new backend client over the given token store
func NewClient(opts Options, tokens domain.TokenStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// OnSessionExpired registers the hook fired when credentials are destroyed,
// either by Logout or by a refresh that could not be recovered.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) sessionTerminated() {
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Do sends an authenticated JSON request. body is encoded when non-nil and
// the response is decoded into out when non-nil. A non-2xx result is a
// *domain.HTTPError; an unrecoverable 401 is a *domain.AuthExpiredError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	creds, _ := c.tokens.Get()

	respBody, err := c.send(ctx, method, path, payload, creds.AccessToken, requestID)
	if err == nil {
		return decodeBody(respBody, out)
	}
	if !domain.IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	var unauthorized *domain.HTTPError
	errors.As(err, &unauthorized)

	if creds.IsZero() {
		return fmt.Errorf("%w: %w", domain.ErrNotLoggedIn, err)
	}

	c.logger.Debug("access token rejected, refreshing", "request_id", requestID, "path", path)

	token, err := c.refresh(ctx, creds.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.AuthExpiredError{Original: unauthorized, Cause: err}
	}

	// Replay once; a second 401 is returned as-is
	respBody, err = c.send(ctx, method, path, payload, token, requestID)
	if err != nil {
		return err
	}
	return decodeBody(respBody, out)
}

// refresh obtains a new access token to replace failedToken. If another
// request already replaced it, the stored token is returned without a
// network call. Callers waiting on a shared refresh can abandon it through
// their own context without cancelling it for the others.
func (c *Client) refresh(ctx context.Context, failedToken string) (string, error) {
	if token, ok := c.replacedToken(failedToken); ok {
		c.logger.Debug("access token already refreshed")
		return token, nil
	}

	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		// A refresh that finished between the check above and this call
		// already stored a new token
		if token, ok := c.replacedToken(failedToken); ok {
			return token, nil
		}

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		token, refreshToken, err := c.requestRefresh(refreshCtx)
		if err != nil {
			// An earlier failed refresh or a logout already ended the session
			if errors.Is(err, errNoRefreshToken) {
				if _, ok := c.tokens.Get(); !ok {
					return "", err
				}
			}
			c.logger.Warn("token refresh failed, ending session", "error", err)
			c.expire()
			return "", err
		}

		stored, err := c.tokens.ReplaceAccessToken(refreshToken, token)
		if err != nil {
			return "", fmt.Errorf("failed to store refreshed token: %w", err)
		}
		if !stored {
			c.logger.Info("credentials changed during refresh, discarding token")
			return "", errCredentialsCleared
		}
		c.logger.Info("access token refreshed")
		return token, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// replacedToken returns the stored access token when it differs from old
func (c *Client) replacedToken(old string) (string, bool) {
	creds, ok := c.tokens.Get()
	if !ok || creds.IsZero() || creds.AccessToken == old {
		return "", false
	}
	return creds.AccessToken, true
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// requestRefresh exchanges the stored refresh token for a new access token.
// It returns the refresh token it sent alongside the new access token.
func (c *Client) requestRefresh(ctx context.Context) (string, string, error) {
	creds, ok := c.tokens.Get()
	if !ok || creds.RefreshToken == "" {
		return "", "", errNoRefreshToken
	}

	payload, err := encodeBody(refreshRequest{Refresh: creds.RefreshToken})
	if err != nil {
		return "", "", err
	}
	respBody, err := c.send(ctx, http.MethodPost, refreshPath, payload, "", uuid.NewString())
	if err != nil {
		return "", "", err
	}

	var resp refreshResponse
	if err := decodeBody(respBody, &resp); err != nil {
		return "", "", err
	}
	if resp.Access == "" {
		return "", "", errors.New("refresh response carried no access token")
	}
	return resp.Access, creds.RefreshToken, nil
}

// expire destroys the stored credentials and notifies the session hook
func (c *Client) expire() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Error("failed to clear credentials", "error", err)
	}
	c.sessionTerminated()
}

// send performs one HTTP round trip. token is attached as a bearer when set.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token, requestID string) ([]byte, error) {
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("backend request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend request error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, &domain.HTTPError{
			Method:  method,
			URL:     reqURL,
			Status:  resp.StatusCode,
			Payload: respBody,
		}
	}
	return respBody, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return payload, nil
}

func decodeBody(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
