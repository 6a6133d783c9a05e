package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *QuoteClient {
	return NewQuoteClient(QuoteOptions{BaseURL: baseURL, APIKey: "test-key", Timeout: 2 * time.Second}, nil)
}

func TestGetPrice_Success(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAA","price":3.25}`))
	}))
	defer srv.Close()

	price, err := newTestClient(srv.URL).GetPrice(context.Background(), "AAA")
	require.NoError(t, err)

	assert.Equal(t, 3.25, price)
	assert.Equal(t, "/stock/AAA", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestGetPrice_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"price":1}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL+"/").GetPrice(context.Background(), "BRK.B")
	require.NoError(t, err)
	assert.Equal(t, "/stock/BRK.B", gotPath)
}

func TestGetPrice_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"Not Found", http.StatusNotFound, `{"error":"unknown symbol"}`, "status 404"},
		{"Unauthorized", http.StatusUnauthorized, `{}`, "status 401"},
		{"Server Error", http.StatusInternalServerError, `oops`, "HTTP 500"},
		{"Missing Price", http.StatusOK, `{"symbol":"AAA"}`, "no price field"},
		{"Null Price", http.StatusOK, `{"price":null}`, "no price field"},
		{"Malformed JSON", http.StatusOK, `{"price":`, "decode"},
		{"String Price", http.StatusOK, `{"price":"3.0"}`, "decode"},
		{"Negative Price", http.StatusOK, `{"price":-1}`, "invalid price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).GetPrice(context.Background(), "AAA")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrQuoteUnavailable), "expected ErrQuoteUnavailable, got %v", err)

			var qe *QuoteError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, "AAA", qe.Ticker)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetPrice_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).GetPrice(context.Background(), "AAA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Contains(t, err.Error(), "AAA")
}

func TestGetPrice_EmptyTicker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetPrice(context.Background(), " ")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Zero(t, calls.Load(), "no request should be sent for an empty ticker")
}

func TestGetPrice_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(srv.URL).GetPrice(ctx, "SLOW")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGetPrice_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"price":42}`))
	}))
	defer srv.Close()

	client := NewQuoteClient(QuoteOptions{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second, MaxAttempts: 2}, nil)
	price, err := client.GetPrice(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 42.0, price)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGetPrice_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetPrice(context.Background(), "AAA")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
