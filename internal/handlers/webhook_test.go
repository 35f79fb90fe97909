package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duderstadt-center/button-backend/internal/middleware"
	"github.com/duderstadt-center/button-backend/internal/services"
)

func replyWebhookBody(t *testing.T, inner map[string]string) []byte {
	t.Helper()
	innerJSON, err := json.Marshal(inner)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{"Message": string(innerJSON)})
	require.NoError(t, err)
	return body
}

func signBody(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func newWebhookApp(manager *services.SessionManager) *fiber.App {
	app := fiber.New()
	app.Post("/webhook/reply", middleware.ValidateRelaySignature(), NewWebhookHandler(manager).HandleReply)
	return app
}

func TestWebhookAcceptsSignedReply(t *testing.T) {
	t.Setenv("RELAY_SIGNING_SECRET", "shh-dont-tell")

	manager := services.NewSessionManager()
	app := newWebhookApp(manager)

	body := replyWebhookBody(t, map[string]string{
		"ts":           "1700000000.000100",
		"reply_author": "Nikki",
		"reply_text":   "on my way",
	})

	req := httptest.NewRequest("POST", "/webhook/reply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Relay-Signature", signBody("shh-dont-tell", body))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	views := manager.ActiveSessions()
	assert.Empty(t, views, "webhook alone opens no session")

	// the reply landed in the slot for the next countdown tick
	offered := manager.PendingReply()
	require.NotNil(t, offered)
	assert.Equal(t, "1700000000.000100", offered.MessageTS)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("RELAY_SIGNING_SECRET", "shh-dont-tell")

	manager := services.NewSessionManager()
	app := newWebhookApp(manager)

	body := replyWebhookBody(t, map[string]string{
		"ts":           "1700000000.000100",
		"reply_author": "Nikki",
		"reply_text":   "on my way",
	})

	req := httptest.NewRequest("POST", "/webhook/reply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Relay-Signature", "bm90IGEgcmVhbCBzaWduYXR1cmU=")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, manager.PendingReply())
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	t.Setenv("RELAY_SIGNING_SECRET", "shh-dont-tell")

	app := newWebhookApp(services.NewSessionManager())

	req := httptest.NewRequest("POST", "/webhook/reply", bytes.NewReader([]byte(`{}`)))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookIgnoresNonReplyEvents(t *testing.T) {
	t.Setenv("RELAY_SIGNING_SECRET", "shh-dont-tell")

	manager := services.NewSessionManager()
	app := newWebhookApp(manager)

	body := replyWebhookBody(t, map[string]string{
		"ts":    "1700000000.000100",
		"event": "reaction_added",
	})

	req := httptest.NewRequest("POST", "/webhook/reply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Relay-Signature", signBody("shh-dont-tell", body))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, manager.PendingReply())
}
