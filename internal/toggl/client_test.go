package toggl_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwaldheim/toggl-jira-report/internal/toggl"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v9/workspaces/42/workspace_users", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "secret-token" || pass != "api_token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[
			{"uid": 1, "name": "Alice", "email": "alice@example.com"},
			{"uid": 2, "name": "Bob", "email": "bob@example.com", "inactive": true}
		]`)
	})

	mux.HandleFunc("/reports/api/v2/details", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("workspace_id") != "42" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{
				"total_count": 3, "per_page": 2,
				"data": [
					{"id": 10, "description": "PROJ-1 work", "user": "Alice", "uid": 1,
					 "start": "2026-02-02T09:00:00+00:00", "dur": 3600000},
					{"id": 11, "description": "running entry", "user": "Alice", "uid": 1,
					 "start": "2026-02-02T11:00:00+00:00", "dur": -1700000000}
				]
			}`)
		case "2":
			fmt.Fprint(w, `{
				"total_count": 3, "per_page": 2,
				"data": [
					{"id": 12, "description": "PROJ-2 review", "user": "Bob", "uid": 2,
					 "start": "2026-02-03T10:00:00+00:00", "dur": 1800000}
				]
			}`)
		default:
			fmt.Fprint(w, `{"total_count": 3, "per_page": 2, "data": []}`)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchEntries(t *testing.T) {
	srv := newTestServer(t)
	client := toggl.NewClient("secret-token", 42, zerolog.Nop()).WithBaseURL(srv.URL)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)

	entries, err := client.FetchEntries(context.Background(), from, to)
	if err != nil {
		t.Fatalf("FetchEntries: %v", err)
	}
	// The running entry (negative duration) is skipped.
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	first := entries[0]
	if first.ID != 10 || first.Description != "PROJ-1 work" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Person != "Alice" || first.Email != "alice@example.com" {
		t.Errorf("first entry person/email = %q/%q", first.Person, first.Email)
	}
	if first.DurationMillis != 3_600_000 {
		t.Errorf("first entry duration = %d", first.DurationMillis)
	}
	wantStart := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	if !first.Start.Equal(wantStart) {
		t.Errorf("first entry start = %v, want %v", first.Start, wantStart)
	}

	second := entries[1]
	if second.Person != "Bob" || second.Email != "bob@example.com" {
		t.Errorf("second entry person/email = %q/%q", second.Person, second.Email)
	}
}

func TestFetchEntriesBadToken(t *testing.T) {
	srv := newTestServer(t)
	client := toggl.NewClient("wrong-token", 42, zerolog.Nop()).WithBaseURL(srv.URL)

	_, err := client.FetchEntries(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	if err == nil {
		t.Fatal("expected error for rejected token, got nil")
	}
}

func TestMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v9/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"email": "alice@example.com", "fullname": "Alice"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := toggl.NewClient("secret-token", 42, zerolog.Nop()).WithBaseURL(srv.URL)
	email, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("Me = %q, want %q", email, "alice@example.com")
	}
}
