package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"stockdesk/internal/adapters/http/middleware"
	"stockdesk/internal/adapters/persistence/memory"
	"stockdesk/internal/config"
	"stockdesk/internal/core/domain"
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookURL = "https://desk.example.test/api/v1/webhooks/twilio"

type testEnv struct {
	app   *fiber.App
	cfg   *config.Config
	gate  *services.AuthGate
	store *memory.Store
}

func newTestEnv(t *testing.T, twilioToken string) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AppMode:  "dev",
		DBDriver: "memory",
		Session:  config.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Cookie:   config.CookieConfig{Name: "session", SameSite: "lax"},
		Security: config.SecurityConfig{BcryptCost: 4},
		Twilio:   config.TwilioConfig{AuthToken: twilioToken, WebhookURL: testWebhookURL},
	}
	log := zap.NewNop()
	store := memory.NewStore()
	gate := services.NewAuthGate(store.Accounts(), cfg, log)
	ledger := services.NewContactLedger(store.Contacts(), store.Messages(), nil, log)
	catalog := services.NewCatalogService(store.Products(), log)

	auth := NewAuthHandler(gate, cfg, log)
	users := NewUserHandler(gate)
	products := NewProductHandler(catalog)
	contacts := NewContactHandler(ledger)
	webhook := NewWebhookHandler(ledger, cfg, log)
	health := NewHealthHandler(cfg, nil)

	app := fiber.New()
	app.Use(middleware.SessionMiddleware(cfg))
	app.Get("/health", health.HealthCheck)
	app.Post("/auth/login", auth.Login)
	app.Post("/auth/logout", auth.Logout)
	app.Get("/auth/me", middleware.RequireSession(gate), auth.Me)
	app.Post("/users", middleware.RequireRole(gate, domain.RoleAdmin), users.CreateUser)
	app.Get("/products", middleware.RequireSession(gate), products.ListProducts)
	app.Post("/products", middleware.RequireSession(gate), products.AddProduct)
	app.Get("/contacts/:externalId/messages", middleware.RequireRole(gate, domain.RoleAdmin), contacts.History)
	app.Post("/webhooks/twilio", webhook.Twilio)

	return &testEnv{app: app, cfg: cfg, gate: gate, store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	resp := e.do(t, jsonRequest(http.MethodPost, "/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	}, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func jsonRequest(method, target string, body interface{}, cookie *http.Cookie) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return req
}

func decode(t *testing.T, resp *http.Response) response.Response {
	t.Helper()
	var out response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)

	cookie := env.login(t, "alice", "pw1")
	assert.True(t, cookie.HttpOnly)

	resp := env.do(t, jsonRequest(http.MethodGet, "/auth/me", nil, cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "alice", data["display_name"])
	assert.Equal(t, domain.RoleSales, data["role"])

	// sales may not create accounts
	resp = env.do(t, jsonRequest(http.MethodPost, "/users", map[string]string{
		"username": "bob", "password": "x", "role": "admin",
	}, cookie))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/auth/logout", nil, cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogoutRevokesCopiedToken(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)

	cookie := env.login(t, "alice", "pw1")

	bearer := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		return req
	}
	require.Equal(t, http.StatusOK, env.do(t, bearer()).StatusCode)

	resp := env.do(t, jsonRequest(http.MethodPost, "/auth/logout", nil, cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, bearer()).StatusCode)

	// a fresh login still works
	fresh := env.login(t, "alice", "pw1")
	resp = env.do(t, jsonRequest(http.MethodGet, "/auth/me", nil, fresh))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)

	wrong := env.do(t, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "bad"}, nil))
	unknown := env.do(t, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "zed", "password": "bad"}, nil))
	empty := env.do(t, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "", "password": ""}, nil))

	assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, decode(t, wrong), decode(t, unknown))
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)
}

func TestLoginWithForm(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=alice&password=pw1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "root", "pw", domain.RoleAdmin)
	require.NoError(t, err)
	cookie := env.login(t, "root", "pw")

	body := map[string]string{"username": "bob", "password": "x", "role": domain.RoleSales}
	resp := env.do(t, jsonRequest(http.MethodPost, "/users", body, cookie))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/users", body, cookie))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/users", map[string]string{"username": "carol"}, cookie))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/users", body, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.gate.CreateAccount(context.Background(), "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)
	cookie := env.login(t, "alice", "pw1")

	resp := env.do(t, jsonRequest(http.MethodGet, "/products", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/products", map[string]interface{}{
		"name": "Rice", "quantity": 0, "price": 1.25,
	}, cookie))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/products", map[string]interface{}{"name": "Tea"}, cookie))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodPost, "/products", map[string]interface{}{
		"name": "Tea", "quantity": -2, "price": 1,
	}, cookie))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodGet, "/products?page=1&limit=5", nil, cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode(t, resp).Data.(map[string]interface{})
	meta := page["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
	items := page["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].(map[string]interface{})["name"])
}

func twilioSignature(token, fullURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(params map[string]string, signature string) *http.Request {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	return req
}

func TestTwilioWebhook(t *testing.T) {
	const token = "twilio-token"
	env := newTestEnv(t, token)
	params := map[string]string{"From": "whatsapp:+15550001", "Body": "hi"}

	resp := env.do(t, webhookRequest(params, twilioSignature(token, testWebhookURL, params)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/xml")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<Message>")
	assert.Contains(t, string(raw), "Thanks for contacting us")

	history, err := env.store.Messages().ListByContact(context.Background(), "whatsapp:+15550001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.DirectionInbound, history[0].Direction)
	assert.Equal(t, domain.DirectionOutbound, history[1].Direction)
}

func TestTwilioWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t, "twilio-token")
	params := map[string]string{"From": "+15550002", "Body": "hi"}

	resp := env.do(t, webhookRequest(params, twilioSignature("other-token", testWebhookURL, params)))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, webhookRequest(params, ""))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	n, err := env.store.Messages().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTwilioWebhookWithoutToken(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, webhookRequest(map[string]string{"From": "+15550003"}, ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, webhookRequest(map[string]string{"Body": "no sender"}, ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestContactHistory(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	_, err := env.gate.CreateAccount(ctx, "root", "pw", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = env.gate.CreateAccount(ctx, "alice", "pw1", domain.RoleSales)
	require.NoError(t, err)

	resp := env.do(t, webhookRequest(map[string]string{"From": "whatsapp:+15550004", "Body": "hello"}, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	target := "/contacts/" + url.PathEscape("whatsapp:+15550004") + "/messages"

	resp = env.do(t, jsonRequest(http.MethodGet, target, nil, env.login(t, "alice", "pw1")))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodGet, target, nil, env.login(t, "root", "pw")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp).Data.(map[string]interface{})
	assert.Equal(t, "whatsapp:+15550004", data["external_id"])
	messages := data["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].(map[string]interface{})["body"])
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := NewHealthHandler(env.cfg, func() error { return assert.AnError })
	app := fiber.New()
	app.Get("/health", down.HealthCheck)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
