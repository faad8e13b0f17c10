package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRESTClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewRESTClient(NewConfig(server.URL, "anon-key", "", time.Second))
}

func TestRESTClient_InsertSendsRowAndHeaders(t *testing.T) {
	var (
		gotPath   string
		gotBody   map[string]string
		gotAPIKey string
		gotAuth   string
		gotPrefer string
	)

	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPrefer = r.Header.Get("Prefer")

		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.WriteHeader(http.StatusCreated)
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/waitlist", gotPath)
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, "return=minimal", gotPrefer)
	assert.Equal(t, map[string]string{"email": "ada@example.com", "name": "Ada"}, gotBody)
}

func TestRESTClient_DuplicateKey(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","details":"Key (email)=(ada@example.com) already exists.","hint":null,"message":"duplicate key value violates unique constraint \"waitlist_email_key\""}`))
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsTransport(err))
}

func TestRESTClient_BackendReportedFailure(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"PGRST000","message":"service unavailable"}`))
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "service unavailable", backendErr.Message)
	assert.Equal(t, http.StatusServiceUnavailable, backendErr.StatusCode)
	assert.False(t, IsDuplicate(err))
}

func TestRESTClient_EmptyErrorBodyHasNoMessage(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Empty(t, backendErr.Message)
}

func TestRESTClient_MalformedErrorBodyIsTransportFailure(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	assert.True(t, IsTransport(err))
}

func TestRESTClient_ErrorBodyDecodedFromJSON(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"23502","message":"null value in column \"name\"","details":"Failing row contains (null).","hint":"Set a name."}`))
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "23502",
		Message:    `null value in column "name"`,
		Details:    "Failing row contains (null).",
		Hint:       "Set a name.",
	}, backendErr)
}

func TestRESTClient_PlainTextErrorBodyIsTransportFailure(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream connect error", http.StatusBadGateway)
	})

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "502")
}

func TestRESTClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewRESTClient(NewConfig(url, "anon-key", "", time.Second))

	err := client.InsertWaitlistEntry(context.Background(), Entry{Name: "Ada", Email: "ada@example.com"})

	assert.True(t, IsTransport(err))
}
