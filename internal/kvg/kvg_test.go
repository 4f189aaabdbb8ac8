package kvg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/fetch"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, url string, timeout time.Duration) (*Client, *telemetry.Recorder) {
	t.Helper()
	tel := &telemetry.Recorder{}
	return NewClient(ClientOptions{Endpoint: url, Timeout: timeout}, tel), tel
}

func requireKind(t testing.TB, err error, kind fetch.Kind) {
	t.Helper()
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, kind, fetchErr.Kind)
	require.Equal(t, Subject, fetchErr.Subject)
}

func TestFetchDepartures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1643", r.PostForm.Get("stop"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"actual": [
				{"patternText": "11", "direction": "Wik, Kanal", "actualTime": "07:05", "actualRelativeTime": 125, "status": "PREDICTED", "tripId": "8511"},
				{"patternText": "N81", "direction": "Hbf", "actualTime": "07:09", "status": "PLANNED"}
			],
			"stopName": "Kiel Hbf"
		}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	departures, err := client.FetchDepartures(context.Background(), "1643")
	require.NoError(t, err)

	expected := []Departure{
		{
			PatternText:        "11",
			Direction:          "Wik, Kanal",
			ActualTime:         "07:05",
			ActualRelativeTime: 125,
			Status:             "PREDICTED",
			TripID:             "8511",
		},
		{
			PatternText: "N81",
			Direction:   "Hbf",
			ActualTime:  "07:09",
			Status:      "PLANNED",
		},
	}
	diff := cmp.Diff(expected, departures)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchDeparturesKeepsAllEntries(t *testing.T) {
	var entries []string
	for i := 0; i < 9; i++ {
		entries = append(entries, fmt.Sprintf(`{"patternText": "%d", "actualRelativeTime": %d}`, i, i*60))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"actual": [%s]}`, strings.Join(entries, ","))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	departures, err := client.FetchDepartures(context.Background(), "1643")
	require.NoError(t, err)
	require.Len(t, departures, 9)
	require.Equal(t, "8", departures[8].PatternText)
}

func TestFetchDeparturesMissingActual(t *testing.T) {
	for _, body := range []string{`{}`, `{"actual": null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))

		client, _ := newTestClient(t, srv.URL, time.Second)
		departures, err := client.FetchDepartures(context.Background(), "1643")
		srv.Close()

		require.NoError(t, err, body)
		require.NotNil(t, departures, body)
		require.Empty(t, departures, body)
	}
}

func TestFetchDeparturesBadResponses(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		kind   fetch.Kind
	}{
		{name: "array", status: 200, body: `[{"actual": []}]`, kind: fetch.InvalidResponse},
		{name: "null", status: 200, body: `null`, kind: fetch.InvalidResponse},
		{name: "string", status: 200, body: `"maintenance"`, kind: fetch.InvalidResponse},
		{name: "wrong field type", status: 200, body: `{"actual": "none"}`, kind: fetch.InvalidResponse},
		{name: "not json", status: 200, body: `<html>Bad Gateway</html>`, kind: fetch.Failure},
		{name: "empty", status: 200, body: ``, kind: fetch.Failure},
		{name: "unavailable", status: 503, body: `{"actual": []}`, kind: fetch.Failure},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				fmt.Fprint(w, test.body)
			}))
			defer srv.Close()

			client, tel := newTestClient(t, srv.URL, time.Second)
			_, err := client.FetchDepartures(context.Background(), "1643")
			requireKind(t, err, test.kind)

			warnings := tel.Reports("warning")
			require.NotEmpty(t, warnings)
			require.Equal(t, "kvg: "+report_client_fetch_departures, warnings[len(warnings)-1].ID)
		})
	}
}

func TestFetchDeparturesStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	_, err := client.FetchDepartures(context.Background(), "1643")
	require.Equal(t, "Failed to fetch data: unexpected status 503 Service Unavailable", fetch.Message(err))
}

func TestFetchDeparturesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, 50*time.Millisecond)
	_, err := client.FetchDepartures(context.Background(), "1643")
	requireKind(t, err, fetch.Timeout)
	require.Equal(t, fetch.MessageTimeout, fetch.Message(err))
}

func TestFetchDeparturesContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client, _ := newTestClient(t, srv.URL, 0)
	_, err := client.FetchDepartures(ctx, "1643")
	requireKind(t, err, fetch.Timeout)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchDeparturesOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, _ := newTestClient(t, url, time.Second)
	_, err := client.FetchDepartures(context.Background(), "1643")
	requireKind(t, err, fetch.Offline)
	require.Equal(t, fetch.MessageOffline, fetch.Message(err))
}

func TestFetchDeparturesInvalidResponseMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `null`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, time.Second)
	_, err := client.FetchDepartures(context.Background(), "1643")
	requireKind(t, err, fetch.InvalidResponse)
	require.Equal(t, "Failed to fetch data: Invalid API response format", fetch.Message(err))
}
