package byos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

func TestPublishStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"created", http.StatusCreated, true},
		{"bad_request", http.StatusBadRequest, false},
		{"not_found", http.StatusNotFound, false},
		{"server_error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				var snap models.Snapshot
				if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
					t.Errorf("sink received invalid JSON: %v", err)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			got := c.Publish(context.Background(), models.Snapshot{})
			if got != tt.want {
				t.Errorf("Publish() = %v, want %v", got, tt.want)
			}
			if gotPath != "/api/screen" {
				t.Errorf("request path = %q, want /api/screen", gotPath)
			}
		})
	}
}

func TestPublishTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.http.Timeout = 50 * time.Millisecond

	if c.Publish(context.Background(), models.Snapshot{}) {
		t.Error("Publish() = true for timed-out request, want false")
	}
}

func TestPublishConnectionRefused(t *testing.T) {
	// Grab an address nothing is listening on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil)
	if c.Publish(context.Background(), models.Snapshot{}) {
		t.Error("Publish() = true for unreachable sink, want false")
	}
}
