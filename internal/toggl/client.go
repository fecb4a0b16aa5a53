// Package toggl fetches time entries from the Toggl Reports API.
package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwaldheim/toggl-jira-report/internal/model"
)

const (
	defaultBaseURL    = "https://api.track.toggl.com"
	detailsPath       = "/reports/api/v2/details"
	userAgent         = "toggl-jira-report"
	tokenAuthPassword = "api_token"
)

// Client is an authenticated Toggl API client bound to one workspace.
type Client struct {
	baseURL     string
	apiToken    string
	workspaceID int64
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewClient creates a Toggl client for the given workspace. The API token
// authenticates via basic auth with the fixed password "api_token".
func NewClient(apiToken string, workspaceID int64, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		apiToken:    apiToken,
		workspaceID: workspaceID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// detailsItem is one entry in the detailed report response.
type detailsItem struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	User        string `json:"user"`
	UID         int64  `json:"uid"`
	Start       string `json:"start"`
	Dur         int64  `json:"dur"` // milliseconds; negative while running
}

// detailsResponse is the paged detailed report envelope.
type detailsResponse struct {
	TotalCount int           `json:"total_count"`
	PerPage    int           `json:"per_page"`
	Data       []detailsItem `json:"data"`
}

// workspaceUser is one member of the workspace, used to map user IDs to
// email addresses (the detailed report itself carries only the name).
type workspaceUser struct {
	UID      int64  `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Inactive bool   `json:"inactive"`
}

// FetchEntries returns all completed time entries in [from, to]. Running
// entries (negative duration in Toggl API semantics) are skipped. The
// detailed report is paged; all pages are fetched.
func (c *Client) FetchEntries(ctx context.Context, from, to time.Time) ([]model.TimeEntry, error) {
	emails, err := c.fetchUserEmails(ctx)
	if err != nil {
		return nil, err
	}

	var entries []model.TimeEntry
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("workspace_id", fmt.Sprintf("%d", c.workspaceID))
		q.Set("since", from.Format("2006-01-02"))
		q.Set("until", to.Format("2006-01-02"))
		q.Set("user_agent", userAgent)
		q.Set("page", fmt.Sprintf("%d", page))

		var resp detailsResponse
		if err := c.getJSON(ctx, detailsPath+"?"+q.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("fetching detailed report page %d: %w", page, err)
		}

		for _, item := range resp.Data {
			if item.Dur < 0 {
				continue
			}
			start, err := time.Parse(time.RFC3339, item.Start)
			if err != nil {
				return nil, fmt.Errorf("parsing start of entry %d: %w", item.ID, err)
			}
			entries = append(entries, model.TimeEntry{
				ID:             item.ID,
				Description:    item.Description,
				Person:         item.User,
				Email:          emails[item.UID],
				Start:          start,
				DurationMillis: item.Dur,
			})
		}

		c.log.Debug().
			Int("page", page).
			Int("items", len(resp.Data)).
			Int("total", resp.TotalCount).
			Msg("fetched toggl report page")

		if len(resp.Data) == 0 || resp.PerPage == 0 || len(entries) >= resp.TotalCount {
			break
		}
	}
	return entries, nil
}

// fetchUserEmails loads the workspace member list and returns a user
// ID to email mapping.
func (c *Client) fetchUserEmails(ctx context.Context) (map[int64]string, error) {
	var users []workspaceUser
	path := fmt.Sprintf("/api/v9/workspaces/%d/workspace_users", c.workspaceID)
	if err := c.getJSON(ctx, path, &users); err != nil {
		return nil, fmt.Errorf("fetching workspace users: %w", err)
	}
	emails := make(map[int64]string, len(users))
	for _, u := range users {
		emails[u.UID] = u.Email
	}
	return emails, nil
}

// Me verifies the API token by fetching the current user profile and
// returns the account's email address.
func (c *Client) Me(ctx context.Context) (string, error) {
	var me struct {
		Email    string `json:"email"`
		Fullname string `json:"fullname"`
	}
	if err := c.getJSON(ctx, "/api/v9/me", &me); err != nil {
		return "", fmt.Errorf("fetching toggl profile: %w", err)
	}
	return me.Email, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiToken, tokenAuthPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("toggl API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("toggl API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding toggl response: %w", err)
	}
	return nil
}
