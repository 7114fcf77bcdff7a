package startupradar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// Timeout applied to every remote call.
	requestTimeout = 30 * time.Second
	// Page size requested from paginated list endpoints.
	listPageSize = 200
)

// Client talks to the Startup Radar API. Authenticate must succeed before any
// other call; there is no implicit re-auth.
type Client struct {
	baseURL  string
	email    string
	password string
	token    string
	http     *http.Client
}

func NewClient(baseURL, email, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		email:    email,
		password: password,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// NewClientFromEnv builds a client from STARTUP_RADAR_API_URL,
// STARTUP_RADAR_EMAIL and STARTUP_RADAR_PASSWORD.
func NewClientFromEnv() *Client {
	return NewClient(
		os.Getenv("STARTUP_RADAR_API_URL"),
		os.Getenv("STARTUP_RADAR_EMAIL"),
		os.Getenv("STARTUP_RADAR_PASSWORD"),
	)
}

// Authenticate exchanges the stored credentials for a bearer token via
// POST /auth/login (form-encoded).
func (c *Client) Authenticate(ctx context.Context) error {
	if c.email == "" || c.password == "" {
		return &AuthError{Reason: "missing credentials (STARTUP_RADAR_EMAIL / STARTUP_RADAR_PASSWORD)"}
	}

	form := url.Values{}
	form.Set("username", c.email)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Reason: fmt.Sprintf("login rejected: %d - %s", resp.StatusCode, string(body))}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}

	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return &AuthError{Reason: "login response missing access_token"}
	}

	c.token = payload.AccessToken
	return nil
}

// get performs an authenticated GET. A remote 404 yields (nil, nil): the
// resource is absent, not an error.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.token == "" {
		return nil, &AuthError{Reason: "not authenticated, call Authenticate first"}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RemoteError{Path: path, Body: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Path: path, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Path: path, Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// getAllPages walks a paginated list endpoint from page 1 until the remote's
// reported page count is reached, or a page comes back absent. The remote is
// trusted for its own pagination metadata.
func getAllPages[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", fmt.Sprint(page))
		query.Set("size", fmt.Sprint(listPageSize))

		body, err := c.get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if body == nil {
			break
		}

		var envelope struct {
			Items []T `json:"items"`
			Pages int `json:"pages"`
		}

		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, &RemoteError{Path: path, Status: http.StatusOK, Body: "malformed page payload: " + err.Error()}
		}

		all = append(all, envelope.Items...)

		if envelope.Pages < 1 {
			envelope.Pages = 1
		}
		if page >= envelope.Pages {
			break
		}
	}

	return all, nil
}

func (c *Client) GetStartups(ctx context.Context) ([]Startup, error) {
	return getAllPages[Startup](ctx, c, "/startups")
}

func (c *Client) GetInvestors(ctx context.Context) ([]Investor, error) {
	return getAllPages[Investor](ctx, c, "/investors")
}

func (c *Client) GetContacts(ctx context.Context) ([]Contact, error) {
	return getAllPages[Contact](ctx, c, "/contacts")
}

// GetAnalysis fetches the messaging analysis for a startup. Returns (nil, nil)
// when the remote has none.
func (c *Client) GetAnalysis(ctx context.Context, startupID string) (*Analysis, error) {
	body, err := c.get(ctx, "/analysis/startup/"+startupID, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, &RemoteError{Path: "/analysis/startup/" + startupID, Status: http.StatusOK, Body: "malformed analysis payload: " + err.Error()}
	}
	return &analysis, nil
}

// GetDetailedAudit fetches the detailed audit for a startup. Returns
// (nil, nil) when the remote has none.
func (c *Client) GetDetailedAudit(ctx context.Context, startupID string) (*DetailedAudit, error) {
	body, err := c.get(ctx, "/detailed-audit/"+startupID, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var audit DetailedAudit
	if err := json.Unmarshal(body, &audit); err != nil {
		return nil, &RemoteError{Path: "/detailed-audit/" + startupID, Status: http.StatusOK, Body: "malformed audit payload: " + err.Error()}
	}
	return &audit, nil
}
