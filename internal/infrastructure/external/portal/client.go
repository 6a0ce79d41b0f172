// Package portal implements the student portal client.
// It fetches the transcript, registration and profile pages with the
// caller's session cookie and extracts table rows from the HTML.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// TranscriptMarker must appear on a transcript page served to a logged-in
// session. Without it the portal returned a login or error page.
const TranscriptMarker = "BẢNG ĐIỂM SINH VIÊN"

// maxPageSize caps the body read from the portal.
const maxPageSize = 8 << 20

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the portal client.
type ClientConfig struct {
	// BaseURL is the portal base URL
	BaseURL string

	// SessionCookieName is the cookie the portal issues after login
	SessionCookieName string

	// Page paths relative to BaseURL
	TranscriptPath   string
	RegistrationPath string
	ProfilePath      string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// UserAgent sent with every request
	UserAgent string

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		SessionCookieName: "SSESSdf6f777d3f8a1d0fb2e4e5d1ec62f6e2",
		TranscriptPath:    "/sinhvien/kqhoctap",
		RegistrationPath:  "/sinhvien/dkhp/thongtindangky",
		ProfilePath:       "/sinhvien/thongtin/hoso-online",
		Timeout:           30 * time.Second,
		UserAgent:         "academic-ledger/1.0",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the student portal client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new portal client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logger.Default()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			// The portal redirects expired sessions to the login page.
			// Following the redirect would hide that from the caller.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: config.Logger.With(logger.Component("portal")),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PAGE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// TranscriptURL returns the transcript page URL for a student.
func (c *Client) TranscriptURL(mssv string) string {
	return c.config.BaseURL + c.config.TranscriptPath + "?sid=" + url.QueryEscape(mssv)
}

// RegistrationURL returns the registration page URL.
func (c *Client) RegistrationURL() string {
	return c.config.BaseURL + c.config.RegistrationPath
}

// ProfileURL returns the profile page URL.
func (c *Client) ProfileURL() string {
	return c.config.BaseURL + c.config.ProfilePath
}

// FetchTranscript fetches and extracts the transcript page.
// Returns shared.ErrPortalNotLoggedIn if the marker is missing.
func (c *Client) FetchTranscript(ctx context.Context, mssv, cookie string) (*TranscriptPage, error) {
	body, err := c.Fetch(ctx, c.TranscriptURL(mssv), cookie)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	if !strings.Contains(body, TranscriptMarker) {
		return nil, shared.ErrPortalNotLoggedIn
	}

	page, err := ExtractTranscript(body)
	if err != nil {
		return nil, fmt.Errorf("extract transcript: %w", err)
	}

	c.logger.Debug("transcript fetched",
		logger.MSSV(mssv),
		logger.Count("rows", len(page.Rows)),
	)
	return page, nil
}

// FetchRegistration fetches and extracts the current registration page.
func (c *Client) FetchRegistration(ctx context.Context, cookie string) (*RegistrationPage, error) {
	body, err := c.Fetch(ctx, c.RegistrationURL(), cookie)
	if err != nil {
		return nil, fmt.Errorf("fetch registration: %w", err)
	}

	page, err := ExtractRegistration(body)
	if err != nil {
		return nil, fmt.Errorf("extract registration: %w", err)
	}
	return page, nil
}

// FetchMajor fetches the profile page and returns the major name.
// An empty string means the row was not found.
func (c *Client) FetchMajor(ctx context.Context, cookie string) (string, error) {
	body, err := c.Fetch(ctx, c.ProfileURL(), cookie)
	if err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}

	major, err := ExtractMajor(body)
	if err != nil {
		return "", fmt.Errorf("extract profile: %w", err)
	}
	return major, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Fetch performs a GET with the session cookie and returns the body.
// A single attempt is made; the caller decides whether to re-sync.
func (c *Client) Fetch(ctx context.Context, pageURL, cookie string) (string, error) {
	if cookie == "" {
		return "", shared.ErrMissingSession
	}

	return c.doRequest(ctx, pageURL, cookie)
}

func (c *Client) doRequest(ctx context.Context, pageURL, cookie string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", shared.WrapError("portal", "Fetch", shared.ErrFetch, "create request", err)
	}
	req.AddCookie(&http.Cookie{Name: c.config.SessionCookieName, Value: cookie})
	req.Header.Set("Accept", "text/html")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", shared.WrapError("portal", "Fetch", shared.ErrTimeout, "request timeout", err)
		}
		return "", shared.WrapError("portal", "Fetch", shared.ErrFetch, "http request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", shared.WrapError("portal", "Fetch", shared.ErrFetch, "read response", err)
	}

	c.logger.Debug("portal request",
		logger.URL(pageURL),
		logger.Int("status", resp.StatusCode),
		logger.Latency(time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 500:
		return "", shared.WrapError("portal", "Fetch", shared.ErrServiceUnavailable,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return "", shared.ErrPortalNotLoggedIn
	case resp.StatusCode >= 400:
		return "", shared.WrapError("portal", "Fetch", shared.ErrFetch,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	return string(raw), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
