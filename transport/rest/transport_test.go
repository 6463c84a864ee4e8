package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/websql-driver/protocol"
)

func TestNew_RejectsBadEndpoints(t *testing.T) {
	tests := []string{
		"",
		"://nope",
		"ftp://localhost/mydb",
		"localhost:12321/mydb",
	}

	for _, endpoint := range tests {
		_, err := New(endpoint, Options{})
		require.Error(t, err, "endpoint %q", endpoint)
	}
}

func TestPost_RoundTrip(t *testing.T) {
	var gotMethod, gotContentType, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	tr, err := New(srv.URL, Options{})
	require.NoError(t, err)
	defer tr.Close()

	resp, err := tr.Post(context.Background(), []byte(`{"transaction":[]}`), map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Basic abc",
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, `{"results":[]}`, string(resp.Body))
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "Basic abc", gotAuth)
	require.Equal(t, `{"transaction":[]}`, string(gotBody))
}

func TestPost_Non200PassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"boom","reqIdx":0,"code":500}`))
	}))
	defer srv.Close()

	tr, err := New(srv.URL, Options{})
	require.NoError(t, err)
	defer tr.Close()

	resp, err := tr.Post(context.Background(), []byte("{}"), nil)
	require.NoError(t, err)
	require.Equal(t, 500, resp.StatusCode)
	require.Contains(t, string(resp.Body), "boom")
}

func TestPost_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	tr, err := New(endpoint, Options{Timeout: 2 * time.Second})
	require.NoError(t, err)

	_, err = tr.Post(context.Background(), []byte("{}"), nil)
	var terr *protocol.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, protocol.ErrorCodeConnectionFailed, terr.Code)

	m := tr.GetMetrics()
	require.EqualValues(t, 1, m.TotalRequests)
	require.EqualValues(t, 1, m.TotalErrors)
	require.NotNil(t, m.LastError)
}

func TestPost_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	tr, err := New(srv.URL, Options{})
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = tr.Post(ctx, []byte("{}"), nil)
	var terr *protocol.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, protocol.ErrorCodeTimeout, terr.Code)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPost_AfterCloseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	tr, err := New(srv.URL, Options{})
	require.NoError(t, err)
	require.True(t, tr.IsHealthy())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close()) // idempotent
	require.False(t, tr.IsHealthy())

	_, err = tr.Post(context.Background(), []byte("{}"), nil)
	var terr *protocol.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, protocol.ErrorCodeTransportClosed, terr.Code)
}

func TestPost_MetricsAccumulate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	tr, err := New(srv.URL, Options{})
	require.NoError(t, err)
	defer tr.Close()

	for i := 0; i < 3; i++ {
		_, err := tr.Post(context.Background(), []byte(`{"transaction":[]}`), nil)
		require.NoError(t, err)
	}

	m := tr.GetMetrics()
	require.EqualValues(t, 3, m.TotalRequests)
	require.Zero(t, m.TotalErrors)
	require.EqualValues(t, 3*len(`{"transaction":[]}`), m.BytesSent)
	require.EqualValues(t, 3*len(`{"results":[]}`), m.BytesReceived)
	require.Greater(t, m.AverageLatency, time.Duration(0))
}

func TestNew_CustomHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	tr, err := New(srv.URL, Options{HTTPClient: srv.Client()})
	require.NoError(t, err)

	resp, err := tr.Post(context.Background(), []byte("{}"), nil)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, tr.Close())
}
