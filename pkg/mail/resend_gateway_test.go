package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(serverURL string) *ResendGateway {
	g := NewResendGateway(ResendConfig{
		APIKey:  "re_test_key",
		From:    "Bookings <bookings@example.com>",
		Timeout: 2 * time.Second,
	})
	g.apiURL = serverURL
	return g
}

func TestSend_Success(t *testing.T) {
	var gotAuth string
	var gotBody sendEmailRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	err := g.Send(context.Background(), Message{
		To:      "payer@example.com",
		Subject: "Booking confirmed: Meeting Room Merdeka",
		HTML:    "<p>See you there</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "Bookings <bookings@example.com>", gotBody.From)
	assert.Equal(t, []string{"payer@example.com"}, gotBody.To)
	assert.Equal(t, "Booking confirmed: Meeting Room Merdeka", gotBody.Subject)
	assert.Equal(t, "<p>See you there</p>", gotBody.HTML)
}

func TestSend_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	err := g.Send(context.Background(), Message{To: "payer@example.com", Subject: "x", HTML: "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestSend_MissingAPIKey(t *testing.T) {
	g := NewResendGateway(ResendConfig{From: "bookings@example.com"})

	err := g.Send(context.Background(), Message{To: "payer@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")
}

func TestSend_MissingRecipient(t *testing.T) {
	g := newTestGateway("http://localhost:0")

	err := g.Send(context.Background(), Message{Subject: "x", HTML: "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient address is required")
}

func TestSend_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Send(ctx, Message{To: "payer@example.com", Subject: "x", HTML: "y"})
	require.Error(t, err)
}
