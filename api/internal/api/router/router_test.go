package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerdesk/careerdesk/api/internal/api/handlers"
	"github.com/careerdesk/careerdesk/api/internal/api/middleware"
	"github.com/careerdesk/careerdesk/api/internal/api/router"
	"github.com/careerdesk/careerdesk/api/internal/core/domain"
	"github.com/careerdesk/careerdesk/api/internal/core/services"
	deliveryhttp "github.com/careerdesk/careerdesk/api/internal/delivery/http"
	"github.com/careerdesk/careerdesk/api/internal/infrastructure/crypto"
	"github.com/careerdesk/careerdesk/api/internal/report"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	*httptest.Server
	handler http.Handler
	users   *memUsers
	audit *memAudit
}

func newTestServer(t *testing.T, burst int) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := &memUsers{users: map[string]domain.UserInfo{}}
	convs := &memConversations{data: map[string][]domain.StoredConversation{}, versions: map[string]int{}}
	audit := &memAudit{}

	viewer, err := report.NewBuilder()
	require.NoError(t, err)

	reportService, err := services.NewReportService(services.ReportServiceDeps{
		Cipher:         crypto.NewPasswordCipher(nil),
		Builder:        viewer,
		Users:          users,
		Conversations:  convs,
		Audit:          audit,
		FingerprintKey: []byte("router-test-key"),
		Logger:         logger,
	})
	require.NoError(t, err)

	hash, err := services.HashAdminPassword("5102")
	require.NoError(t, err)
	authService := services.NewAuthService("admin", hash, services.NewTokenService("router-test-secret-0000000000000000"), logger)
	userService := services.NewUserService(users)

	authMiddleware := middleware.NewAuthMiddleware(authService, logger, 1, burst)
	t.Cleanup(authMiddleware.Close)

	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   1 << 20,
		AuthHandler:    handlers.NewAuthHandler(authService, false),
		ReportHandler:  handlers.NewReportHandler(reportService),
		UserHandler:    handlers.NewUserHandler(userService, services.NewConversationService(convs, users, logger)),
		AdminHandler:   handlers.NewAdminHandler(userService, reportService),
		HealthHandler:  deliveryhttp.NewHealthHandler(okPinger{}),
		AuthMiddleware: authMiddleware,
		PINVerifier:    userService,
		Logger:         logger,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, handler: mux, users: users, audit: audit}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func message(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	return body.Message
}

func payloadBody(password, confirm string) map[string]any {
	return map[string]any{
		"payload": map[string]any{
			"userId": "u1",
			"conversations": []map[string]any{{
				"id": 1, "userId": "u1", "aiName": "Hana", "aiType": "human",
				"messages": []map[string]string{{"author": "user", "text": "hi"}},
				"summary": "## Summary", "date": "2024-05-01T10:00:00Z",
			}},
		},
		"password":        password,
		"confirmPassword": confirm,
	}
}

// ==============================================================================
// 1. Report export & open
// ==============================================================================

func TestReports_Generate_Then_Open(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodPost, "/api/v1/reports", payloadBody("test1234", "test1234"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="report_u1_\d{4}-\d{2}-\d{2}\.html"$`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	html := readBody(t, resp)

	container, err := report.ExtractContainer(html)
	require.NoError(t, err)

	// Open via the bare container
	resp = srv.do(t, http.MethodPost, "/api/v1/reports/open", map[string]string{"container": container, "password": "test1234"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload domain.ReportPayload
	require.NoError(t, json.Unmarshal(readBody(t, resp), &payload))
	assert.Equal(t, "u1", payload.UserID)
	require.Len(t, payload.Conversations, 1)
	assert.Equal(t, "Hana", payload.Conversations[0].AIName)

	// Open via the uploaded HTML, wrong password
	resp = srv.do(t, http.MethodPost, "/api/v1/reports/open", map[string]string{"html": string(html), "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "password incorrect or data corrupted", message(t, resp))
}

func TestReports_Open_Malformed_Container_Is_Uniform(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodPost, "/api/v1/reports/open", map[string]string{"container": "zz:zz", "password": "test1234"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "password incorrect or data corrupted", message(t, resp))
}

func TestReports_Generate_Rejections(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodPost, "/api/v1/reports", payloadBody("abc", "abc"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ErrWeakPassword.Error(), message(t, resp))

	resp = srv.do(t, http.MethodPost, "/api/v1/reports", payloadBody("abcd", "abce"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ErrPasswordMismatch.Error(), message(t, resp))

	bad := payloadBody("test1234", "test1234")
	bad["payload"].(map[string]any)["userId"] = ""
	resp = srv.do(t, http.MethodPost, "/api/v1/reports", bad, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/reports", strings.NewReader("{not json"))
	require.NoError(t, err)
	raw, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestReports_Body_Limit(t *testing.T) {
	srv := newTestServer(t, 100)

	huge := payloadBody("test1234", "test1234")
	huge["payload"].(map[string]any)["conversations"].([]map[string]any)[0]["summary"] = strings.Repeat("x", 2<<20)
	raw, err := json.Marshal(huge)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewReader(raw))
	req.RemoteAddr = "192.0.2.10:4000"
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ==============================================================================
// 2. Clients & history
// ==============================================================================

func TestUsers_Register_And_History(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodPost, "/api/v1/users", nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user domain.UserInfo
	require.NoError(t, json.Unmarshal(readBody(t, resp), &user))
	require.Len(t, user.PIN, 4)

	// Public lookup never returns the PIN
	resp = srv.do(t, http.MethodGet, "/api/v1/users/"+user.ID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(readBody(t, resp)), `"pin"`)

	resp = srv.do(t, http.MethodPost, "/api/v1/users/"+user.ID+"/pin", map[string]string{"pin": user.PIN}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	history := "/api/v1/users/" + user.ID + "/conversations"
	resp = srv.do(t, http.MethodGet, history, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	pin := map[string]string{middleware.PINHeader: user.PIN}
	resp = srv.do(t, http.MethodPost, history, map[string]any{
		"aiName": "Pochi", "aiType": "dog", "summary": "walked through options",
		"messages": []map[string]string{{"author": "ai", "text": "woof"}},
	}, pin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, history, map[string]any{"aiName": "Pochi", "aiType": "cat"}, pin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, history, nil, pin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var convs []domain.StoredConversation
	require.NoError(t, json.Unmarshal(readBody(t, resp), &convs))
	require.Len(t, convs, 1)
	assert.Equal(t, user.ID, convs[0].UserID)
}

func TestUsers_Wrong_PIN(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.users.users["user_1"] = domain.UserInfo{ID: "user_1", Nickname: "n", PIN: "1234"}

	resp := srv.do(t, http.MethodPost, "/api/v1/users/user_1/pin", map[string]string{"pin": "9999"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/v1/users/user_1/pin", map[string]string{"pin": "12a4"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsers_PIN_Lockout(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.users.users["user_1"] = domain.UserInfo{ID: "user_1", Nickname: "n", PIN: "1234"}
	history := "/api/v1/users/user_1/conversations"

	for _, guess := range []string{"1000", "1001", "1002", "1003", "1004"} {
		resp := srv.do(t, http.MethodGet, history, nil, map[string]string{middleware.PINHeader: guess})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := srv.do(t, http.MethodGet, history, nil, map[string]string{middleware.PINHeader: "1234"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/v1/users/user_1/pin", map[string]string{"pin": "1234"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ==============================================================================
// 3. Admin console
// ==============================================================================

func login(t *testing.T, srv *testServer) map[string]string {
	t.Helper()
	resp := srv.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "5102"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	return map[string]string{"Authorization": "Bearer " + body.AccessToken}
}

func TestAdmin_Requires_Token(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodGet, "/api/v1/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/v1/admin/users", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "0000"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdmin_Stored_Report_And_Verify(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.users.users["user_1"] = domain.UserInfo{ID: "user_1", Nickname: "n", PIN: "1234"}
	auth := login(t, srv)

	resp := srv.do(t, http.MethodPost, "/api/v1/admin/users/user_1/report",
		map[string]any{"password": "test1234", "confirmPassword": "test1234"}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := readBody(t, resp)

	require.Len(t, srv.audit.exports, 1)
	assert.Equal(t, "admin", srv.audit.exports[0].RequestedBy)

	resp = srv.do(t, http.MethodPost, "/api/v1/admin/exports/verify",
		map[string]string{"userId": "user_1", "html": string(html)}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var export domain.ReportExport
	require.NoError(t, json.Unmarshal(readBody(t, resp), &export))
	assert.Equal(t, srv.audit.exports[0].ID, export.ID)

	resp = srv.do(t, http.MethodGet, "/api/v1/admin/exports?user_id=user_1", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), `"total":1`)

	resp = srv.do(t, http.MethodPost, "/api/v1/admin/users/ghost/report",
		map[string]any{"password": "test1234", "confirmPassword": "test1234"}, auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ==============================================================================
// 4. Gateway
// ==============================================================================

func TestGateway_Health_And_Ping(t *testing.T) {
	srv := newTestServer(t, 100)

	resp := srv.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, "pong", string(readBody(t, resp)))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestGateway_Rate_Limit(t *testing.T) {
	srv := newTestServer(t, 2)

	var last int
	for i := 0; i < 5; i++ {
		last = srv.do(t, http.MethodGet, "/api/v1/users/nobody", nil, nil).StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
