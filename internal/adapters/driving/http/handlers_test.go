package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driving"
)

// Mock services

type mockLoginService struct {
	startReq     *driving.StartRequest
	startResp    driving.StartResponse
	startErr     error
	finalizeReq  *driving.FinalizeRequest
	finalizeResp driving.FinalizeResponse
	finalizeErr  error
}

func (m *mockLoginService) Start(ctx context.Context, req driving.StartRequest) (*driving.StartResponse, error) {
	m.startReq = &req
	if m.startErr != nil {
		return nil, m.startErr
	}
	return &m.startResp, nil
}

func (m *mockLoginService) Finalize(ctx context.Context, req driving.FinalizeRequest) (*driving.FinalizeResponse, error) {
	m.finalizeReq = &req
	if m.finalizeErr != nil {
		return nil, m.finalizeErr
	}
	return &m.finalizeResp, nil
}

type mockProfileService struct {
	completeReq *driving.CompleteRequest
	completeErr error
	profile     *domain.Profile
	getErr      error
}

func (m *mockProfileService) Complete(ctx context.Context, req driving.CompleteRequest) error {
	m.completeReq = &req
	return m.completeErr
}

func (m *mockProfileService) Get(ctx context.Context, subject string) (*domain.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

type mockSessions struct {
	subjects map[string]string
}

func (m *mockSessions) Mint(subject string) (string, error) {
	return "token-for-" + subject, nil
}

func (m *mockSessions) Parse(token string) (string, error) {
	if subject, ok := m.subjects[token]; ok {
		return subject, nil
	}
	return "", domain.ErrUnauthorized
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

type serverFixture struct {
	server  *Server
	login   *mockLoginService
	profile *mockProfileService
	db      *mockPinger
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()

	f := &serverFixture{
		login:   &mockLoginService{},
		profile: &mockProfileService{},
		db:      &mockPinger{},
	}
	f.server = NewServer(Config{
		Host:             "127.0.0.1",
		Port:             0,
		Version:          "test",
		CookieDomain:     ".vasaauktioner.se",
		SessionTTL:       720 * time.Hour,
		DefaultReturnURL: "https://vasaauktioner.se/post-login",
		AppOrigin:        "https://vasaauktioner.se",
	}, f.login, f.profile, &mockSessions{
		subjects: map[string]string{"valid-token": "bankid-subject-1"},
	}, f.db, nil)
	return f
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func sessionCookieOf(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// Login flow

func TestHandleStart_RedirectsToProvider(t *testing.T) {
	f := newTestServer(t)
	f.login.startResp = driving.StartResponse{
		AuthorizationURL: "https://idp.example.com/authorize?state=abc",
		State:            "abc",
	}

	rec := f.do(httptest.NewRequest("GET", "/auth/start?return=/auctions/42", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://idp.example.com/authorize?state=abc" {
		t.Errorf("Location = %q", got)
	}
	if f.login.startReq == nil || f.login.startReq.ReturnURL != "/auctions/42" {
		t.Errorf("startReq = %+v, want ReturnURL /auctions/42", f.login.startReq)
	}
}

func TestHandleStart_ServiceFailure(t *testing.T) {
	f := newTestServer(t)
	f.login.startErr = errors.New("boom")

	rec := f.do(httptest.NewRequest("GET", "/auth/start", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("response body must not echo internal errors")
	}
}

func TestHandleFinalize_Success(t *testing.T) {
	f := newTestServer(t)
	f.login.finalizeResp = driving.FinalizeResponse{
		RedirectURL:  "https://vasaauktioner.se/dashboard?first=1",
		SessionToken: "signed-session-token",
		FirstLogin:   true,
	}

	rec := f.do(httptest.NewRequest("GET", "/auth/finalize?code=auth-code&state=abc", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://vasaauktioner.se/dashboard?first=1" {
		t.Errorf("Location = %q", got)
	}

	cookie := sessionCookieOf(rec)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "signed-session-token" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if cookie.Domain != ".vasaauktioner.se" {
		t.Errorf("cookie domain = %q", cookie.Domain)
	}
	if !cookie.Secure {
		t.Error("cookie must be Secure")
	}
	if cookie.HttpOnly {
		t.Error("cookie must be readable by the frontend")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != int((720 * time.Hour).Seconds()) {
		t.Errorf("cookie MaxAge = %d", cookie.MaxAge)
	}

	if f.login.finalizeReq.Code != "auth-code" || f.login.finalizeReq.State != "abc" {
		t.Errorf("finalizeReq = %+v", f.login.finalizeReq)
	}
}

func TestHandleFinalize_MissingCode(t *testing.T) {
	f := newTestServer(t)
	f.login.finalizeErr = domain.ErrMissingCode

	rec := f.do(httptest.NewRequest("GET", "/auth/finalize?state=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if sessionCookieOf(rec) != nil {
		t.Error("no session cookie may be set on failure")
	}
}

func TestHandleFinalize_InvalidState(t *testing.T) {
	f := newTestServer(t)
	f.login.finalizeErr = domain.ErrInvalidState

	rec := f.do(httptest.NewRequest("GET", "/auth/finalize?code=auth-code&state=forged", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://vasaauktioner.se/post-login" {
		t.Errorf("Location = %q, want default return URL", got)
	}
	if sessionCookieOf(rec) != nil {
		t.Error("no session cookie may be set for an invalid state")
	}
}

func TestHandleFinalize_UpstreamFailures(t *testing.T) {
	for _, cause := range []error{
		domain.ErrTokenExchange,
		domain.ErrMissingSubject,
		domain.ErrProfileStore,
	} {
		f := newTestServer(t)
		f.login.finalizeErr = cause

		rec := f.do(httptest.NewRequest("GET", "/auth/finalize?code=auth-code&state=abc", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("%v: status = %d, want 502", cause, rec.Code)
		}
		if sessionCookieOf(rec) != nil {
			t.Errorf("%v: no session cookie may be set on failure", cause)
		}
	}
}

// Profile endpoints

func completeRequest(body string, cookie string) *http.Request {
	req := httptest.NewRequest("POST", "/profile/complete", strings.NewReader(body))
	req.Header.Set("Origin", "https://vasaauktioner.se")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})
	}
	return req
}

func TestHandleCompleteProfile_Success(t *testing.T) {
	f := newTestServer(t)

	body := `{"email":"anna@example.com","phone":"+46701234567","accept_terms":true}`
	rec := f.do(completeRequest(body, "valid-token"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req := f.profile.completeReq
	if req == nil {
		t.Fatal("Complete was not called")
	}
	if req.Subject != "bankid-subject-1" {
		t.Errorf("Subject = %q", req.Subject)
	}
	if req.Info.Email == nil || *req.Info.Email != "anna@example.com" {
		t.Errorf("Email = %v", req.Info.Email)
	}
	if !req.Info.AcceptTerms {
		t.Error("AcceptTerms not carried through")
	}

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://vasaauktioner.se" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestHandleCompleteProfile_NoSession(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(completeRequest(`{"accept_terms":true}`, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if f.profile.completeReq != nil {
		t.Error("Complete must not be called without a session")
	}
	// CORS headers still present so the browser can surface the error
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://vasaauktioner.se" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestHandleCompleteProfile_BadToken(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(completeRequest(`{"accept_terms":true}`, "tampered-token"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleCompleteProfile_TermsRequired(t *testing.T) {
	f := newTestServer(t)
	f.profile.completeErr = domain.ErrTermsNotAccepted

	rec := f.do(completeRequest(`{"accept_terms":false}`, "valid-token"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCompleteProfile_UnknownProfile(t *testing.T) {
	f := newTestServer(t)
	f.profile.completeErr = domain.ErrNotFound

	rec := f.do(completeRequest(`{"accept_terms":true}`, "valid-token"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleCompleteProfile_Preflight(t *testing.T) {
	f := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/profile/complete", nil)
	req.Header.Set("Origin", "https://vasaauktioner.se")
	rec := f.do(req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestHandleGetProfile(t *testing.T) {
	f := newTestServer(t)
	email := "anna@example.com"
	f.profile.profile = &domain.Profile{
		Subject:          "bankid-subject-1",
		Email:            &email,
		NeedsContactInfo: false,
	}

	req := httptest.NewRequest("GET", "/profile/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-token"})
	rec := f.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got domain.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Subject != "bankid-subject-1" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if got.Email == nil || *got.Email != email {
		t.Errorf("Email = %v", got.Email)
	}
}

func TestHandleGetProfile_NotFound(t *testing.T) {
	f := newTestServer(t)
	f.profile.getErr = domain.ErrNotFound

	req := httptest.NewRequest("GET", "/profile/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-token"})
	rec := f.do(req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleReady(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	f.db.err = errors.New("connection refused")
	rec = f.do(httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(httptest.NewRequest("GET", "/version", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
