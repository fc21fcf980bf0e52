package strava

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

const activitiesPage = `[
  {
    "id": 1001,
    "name": "Lunch Ride",
    "type": "Ride",
    "sport_type": "Ride",
    "start_date_local": "2017-05-20T12:30:00Z",
    "distance": 24500.3,
    "total_elevation_gain": 210,
    "map": {"id": "a1001", "polyline": null, "summary_polyline": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"}
  },
  {
    "id": 1002,
    "name": "Treadmill",
    "type": "Run",
    "start_date_local": "2017-05-21T07:00:00Z",
    "distance": 5000,
    "total_elevation_gain": 0,
    "map": {"id": "a1002", "summary_polyline": ""}
  },
  {
    "id": 1003,
    "name": "Broken",
    "type": "Run",
    "start_date_local": "yesterday",
    "map": {}
  }
]`

func newTestClient(t *testing.T, handler http.HandlerFunc, onLimits func(RateLimits)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:      server.URL + "/api/v3/",
		Timeout:      time.Second,
		HTTPClient:   server.Client(),
		OnRateLimits: onLimits,
	}, logger.Nop())
}

func TestClient_ListActivities(t *testing.T) {
	var limits RateLimits
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/athlete/activities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.URL.Query().Get("page") != "3" || r.URL.Query().Get("per_page") != "200" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "600,30000")
		w.Header().Set("X-RateLimit-Usage", "7,120")
		_, _ = io.WriteString(w, activitiesPage)
	}, func(l RateLimits) { limits = l })

	activities, fetched, err := client.ListActivities(context.Background(), "token-1", 3, 200)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}

	if len(activities) != 2 {
		t.Fatalf("expected 2 valid activities, got %d", len(activities))
	}
	if fetched != 3 {
		t.Fatalf("expected 3 fetched items, got %d", fetched)
	}
	ride := activities[0]
	if ride.ID() != 1001 || ride.Name() != "Lunch Ride" || ride.Type().Icon() != "fa-bicycle" {
		t.Fatalf("unexpected ride: %d %s %s", ride.ID(), ride.Name(), ride.Type())
	}
	if ride.EncodedPath() != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Fatalf("unexpected path %q", ride.EncodedPath())
	}
	if !ride.StartDateLocal().Equal(time.Date(2017, 5, 20, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date %v", ride.StartDateLocal())
	}
	if activities[1].HasPath() {
		t.Fatal("treadmill run must not have a path")
	}

	if limits != (RateLimits{ShortLimit: 600, DailyLimit: 30000, ShortUsage: 7, DailyUsage: 120}) {
		t.Fatalf("unexpected rate limits %+v", limits)
	}
}

func TestClient_ListActivitiesOnlyMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":2001,"name":"Broken","type":"Ride","start_date_local":"not a date","map":{}}]`)
	}, nil)

	activities, fetched, err := client.ListActivities(context.Background(), "token-1", 1, 200)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(activities) != 0 || fetched != 1 {
		t.Fatalf("expected 0 activities out of 1 fetched, got %d of %d", len(activities), fetched)
	}
}

func TestClient_GetActivity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/activities/1001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":1001,"name":"Lunch Ride","type":"Ride","start_date_local":"2017-05-20T12:30:00Z",
			"map":{"polyline":"_p~iF~ps|U_ulLnnqC","summary_polyline":"_p~iF~ps|U"}}`)
	}, nil)

	activity, err := client.GetActivity(context.Background(), "token-1", 1001)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if activity.EncodedPath() != "_p~iF~ps|U_ulLnnqC" {
		t.Fatalf("detailed polyline must win, got %q", activity.EncodedPath())
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`,
			wantErr: port.ErrUnauthorized,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"message":"Rate Limit Exceeded"}`,
			wantErr: port.ErrRateLimited,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"message":"Record Not Found"}`,
			wantErr: port.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, nil)

			_, _, err := client.ListActivities(context.Background(), "token", 1, 200)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Fatalf("expected APIError with status %d, got %v", tt.status, err)
			}
		})
	}
}

func TestClient_ServerErrorIsNotUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}, nil)

	_, _, err := client.ListActivities(context.Background(), "token", 1, 200)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if errors.Is(err, port.ErrUnauthorized) || errors.Is(err, port.ErrRateLimited) {
		t.Fatal("502 must not map onto auth or rate limit errors")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, logger.Nop())

	_, _, err := client.ListActivities(context.Background(), "token", 1, 200)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 401, Message: "Authorization Error", Errors: []Fault{{Resource: "Athlete", Field: "access_token", Code: "invalid"}}}
	want := "strava api: 401 Authorization Error (Athlete.access_token: invalid)"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &APIError{StatusCode: 503}
	if bare.Error() != "strava api: 503 Service Unavailable" {
		t.Fatalf("unexpected message %q", bare.Error())
	}
}
