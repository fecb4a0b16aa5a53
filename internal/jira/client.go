// Package jira resolves issue metadata and per-version estimate totals
// from the Jira REST API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/mwaldheim/toggl-jira-report/internal/model"
)

const searchPageSize = 100

// Client is an authenticated Jira REST client.
type Client struct {
	baseURL      string
	budgetField  string
	accountField string
	httpClient   *http.Client
	log          zerolog.Logger
}

// NewClient creates a Jira client authenticating with a personal access
// token sent as a bearer token. budgetField and accountField name the
// custom field IDs holding the budget and account values; either may be
// empty if the instance does not use them.
func NewClient(ctx context.Context, baseURL, token, budgetField, accountField string, log zerolog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		budgetField:  budgetField,
		accountField: accountField,
		httpClient:   oauth2.NewClient(ctx, ts),
		log:          log,
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// issueResponse is the raw issue payload. Fields is kept raw because the
// budget and account custom field IDs are configuration-dependent.
type issueResponse struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// ResolveIssue fetches one issue by key. An unknown key (HTTP 404) yields
// (nil, nil): "no record" is a valid state, not an error.
func (c *Client) ResolveIssue(ctx context.Context, key string) (*model.IssueRecord, error) {
	fields := []string{"issuetype", "summary", "fixVersions", "timeoriginalestimate"}
	if c.budgetField != "" {
		fields = append(fields, c.budgetField)
	}
	if c.accountField != "" {
		fields = append(fields, c.accountField)
	}

	q := url.Values{}
	q.Set("fields", strings.Join(fields, ","))
	path := "/rest/api/2/issue/" + url.PathEscape(key) + "?" + q.Encode()

	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolving issue %s: %w", key, err)
	}
	if status == http.StatusNotFound {
		c.log.Debug().Str("key", key).Msg("issue not found")
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("resolving issue %s: jira API error %d: %s", key, status, strings.TrimSpace(string(body)))
	}

	var resp issueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding issue %s: %w", key, err)
	}
	return c.toRecord(resp), nil
}

// ResolveIssues resolves every key once and returns a map with one entry
// per requested key. Unresolvable keys map to nil. The map is complete
// before it is returned; callers hand it to the aggregator as-is.
func (c *Client) ResolveIssues(ctx context.Context, keys []string) (map[string]*model.IssueRecord, error) {
	issues := make(map[string]*model.IssueRecord, len(keys))
	for _, key := range keys {
		rec, err := c.ResolveIssue(ctx, key)
		if err != nil {
			return nil, err
		}
		issues[strings.ToUpper(key)] = rec
	}
	return issues, nil
}

func (c *Client) toRecord(resp issueResponse) *model.IssueRecord {
	rec := &model.IssueRecord{Key: strings.ToUpper(resp.Key)}

	var issueType struct {
		Name string `json:"name"`
	}
	if raw, ok := resp.Fields["issuetype"]; ok {
		_ = json.Unmarshal(raw, &issueType)
	}
	rec.IssueType = issueType.Name

	if raw, ok := resp.Fields["summary"]; ok {
		_ = json.Unmarshal(raw, &rec.Summary)
	}

	var fixVersions []struct {
		Name string `json:"name"`
	}
	if raw, ok := resp.Fields["fixVersions"]; ok {
		_ = json.Unmarshal(raw, &fixVersions)
	}
	for _, v := range fixVersions {
		rec.FixVersions = append(rec.FixVersions, v.Name)
	}

	if raw, ok := resp.Fields["timeoriginalestimate"]; ok {
		var seconds *int64
		if err := json.Unmarshal(raw, &seconds); err == nil && seconds != nil {
			hours := float64(*seconds) / 3600
			rec.EstimateHours = &hours
		}
	}

	if c.budgetField != "" {
		rec.Budget = customFieldString(resp.Fields[c.budgetField])
	}
	if c.accountField != "" {
		rec.Account = customFieldString(resp.Fields[c.accountField])
	}
	return rec
}

// customFieldString extracts a display value from a custom field payload,
// which may be a plain string or an option object ({"value": ...},
// {"name": ...} or {"key": ...} depending on the field type).
func customFieldString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
		Name  string `json:"name"`
		Key   string `json:"key"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Value != "":
			return obj.Value
		case obj.Name != "":
			return obj.Name
		case obj.Key != "":
			return obj.Key
		}
	}
	return ""
}

// searchResponse is the paged JQL search envelope.
type searchResponse struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
	Total      int `json:"total"`
	Issues     []struct {
		Fields struct {
			TimeOriginalEstimate *int64 `json:"timeoriginalestimate"`
		} `json:"fields"`
	} `json:"issues"`
}

// EstimateTotalForVersion sums the original estimates (in hours) of all
// issues currently tagged with the given fix-version. A version Jira does
// not know (HTTP 400 on the JQL clause) counts as 0, not an error.
func (c *Client) EstimateTotalForVersion(ctx context.Context, version string) (float64, error) {
	jql := "fixVersion = " + jqlQuote(version)

	var totalSeconds int64
	for startAt := 0; ; {
		q := url.Values{}
		q.Set("jql", jql)
		q.Set("fields", "timeoriginalestimate")
		q.Set("startAt", fmt.Sprintf("%d", startAt))
		q.Set("maxResults", fmt.Sprintf("%d", searchPageSize))

		body, status, err := c.get(ctx, "/rest/api/2/search?"+q.Encode())
		if err != nil {
			return 0, fmt.Errorf("searching version %q: %w", version, err)
		}
		if status == http.StatusBadRequest {
			// Jira rejects JQL naming a version it does not know.
			c.log.Debug().Str("version", version).Msg("version unknown to jira")
			return 0, nil
		}
		if status != http.StatusOK {
			return 0, fmt.Errorf("searching version %q: jira API error %d: %s", version, status, strings.TrimSpace(string(body)))
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return 0, fmt.Errorf("decoding search response for version %q: %w", version, err)
		}
		for _, issue := range resp.Issues {
			if issue.Fields.TimeOriginalEstimate != nil {
				totalSeconds += *issue.Fields.TimeOriginalEstimate
			}
		}

		startAt += len(resp.Issues)
		if len(resp.Issues) == 0 || startAt >= resp.Total {
			break
		}
	}
	return float64(totalSeconds) / 3600, nil
}

// jqlQuote wraps s in double quotes for use as a JQL string value,
// escaping backslashes and embedded quotes per JQL's escaping rules.
func jqlQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Myself verifies the token by fetching the current user profile and
// returns the account name.
func (c *Client) Myself(ctx context.Context) (string, error) {
	body, status, err := c.get(ctx, "/rest/api/2/myself")
	if err != nil {
		return "", fmt.Errorf("fetching jira profile: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fetching jira profile: jira API error %d: %s", status, strings.TrimSpace(string(body)))
	}
	var me struct {
		Name         string `json:"name"`
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("decoding jira profile: %w", err)
	}
	if me.DisplayName != "" {
		return me.DisplayName, nil
	}
	return me.Name, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("jira API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
