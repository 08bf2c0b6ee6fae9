package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/services"
)

type recordingMailer struct {
	to   string
	body string
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, to, _, body string) error {
	if m.fail {
		return context.DeadlineExceeded
	}
	m.to = to
	m.body = body
	return nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *recordingMailer) {
	t.Helper()
	db := setupTestDB(t)
	svc := services.NewAuthService(db, "secret", time.Hour)
	mailer := &recordingMailer{}
	return NewAuthHandler(db, svc, mailer, 30, false, time.Second), mailer
}

func TestRegisterIssuesTokenAndCookie(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"John","email":"john@test.com","password":"123456","role":"publisher"}`))
	w := httptest.NewRecorder()
	h.Register(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w.Body.Bytes())
	if !env.Success || env.Token == "" {
		t.Fatalf("expected success envelope with token, got %s", w.Body.String())
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("password must not appear in response: %s", env.Data)
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly token cookie, got %v", cookie)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	h, _ := newAuthHandler(t)

	cases := []string{
		`{"name":"","email":"john@test.com","password":"123456"}`,
		`{"name":"John","email":"not-an-email","password":"123456"}`,
		`{"name":"John","email":"john@test.com","password":"123"}`,
		`{"name":"John","email":"john@test.com","password":"123456","role":"admin"}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		h.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", body, w.Code)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler(t)

	body := `{"name":"John","email":"john@test.com","password":"123456"}`
	w := httptest.NewRecorder()
	h.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("first register: expected 200 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	h.Register(w2, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400 got %d", w2.Code)
	}
	if !strings.Contains(w2.Body.String(), "Duplicate resource not allowed") {
		t.Fatalf("expected duplicate message, got %s", w2.Body.String())
	}
}

func TestLogin(t *testing.T) {
	h, _ := newAuthHandler(t)
	reg := `{"name":"John","email":"john@test.com","password":"123456"}`
	h.Register(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(reg)))

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@test.com","password":"123456"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if env := decodeEnvelope(t, w.Body.Bytes()); env.Token == "" {
		t.Fatalf("expected token in login response")
	}

	w2 := httptest.NewRecorder()
	h.Login(w2, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@test.com","password":"wrong"}`)))
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401 got %d", w2.Code)
	}
	if !strings.Contains(w2.Body.String(), "Invalid credentials") {
		t.Fatalf("expected invalid credentials message, got %s", w2.Body.String())
	}

	w3 := httptest.NewRecorder()
	h.Login(w3, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"123456"}`)))
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("missing email: expected 400 got %d", w3.Code)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	h, mailer := newAuthHandler(t)
	seedUser(t, h.DB, "john@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	h.ForgotPassword(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@test.com"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if mailer.to != "john@test.com" || !strings.Contains(mailer.body, "/api/v1/auth/resetpassword/") {
		t.Fatalf("expected reset mail, got to=%q body=%q", mailer.to, mailer.body)
	}

	// Extract the plaintext token from the mailed URL.
	idx := strings.LastIndex(mailer.body, "/")
	token := mailer.body[idx+1:]

	w2 := httptest.NewRecorder()
	r2 := withParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"password":"newpass"}`)),
		nil, map[string]string{"resettoken": token})
	h.ResetPassword(w2, r2)
	if w2.Code != http.StatusOK {
		t.Fatalf("reset: expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}

	// Old token is consumed.
	w3 := httptest.NewRecorder()
	r3 := withParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"password":"another"}`)),
		nil, map[string]string{"resettoken": token})
	h.ResetPassword(w3, r3)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("replayed token: expected 400 got %d", w3.Code)
	}
}

func TestForgotPasswordMailFailureRollsBack(t *testing.T) {
	h, mailer := newAuthHandler(t)
	mailer.fail = true
	seedUser(t, h.DB, "john@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	h.ForgotPassword(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@test.com"}`)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}

	var stored models.User
	h.DB.Where("email = ?", "john@test.com").First(&stored)
	if stored.ResetPasswordToken != "" || stored.ResetPasswordExpire != nil {
		t.Fatalf("expected reset fields rolled back, got %q %v", stored.ResetPasswordToken, stored.ResetPasswordExpire)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	h, _ := newAuthHandler(t)
	w := httptest.NewRecorder()
	h.ForgotPassword(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nobody@test.com"}`)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestUpdatePassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	hash, _ := services.HashPassword("123456")
	user := &models.User{Name: "John", Email: "john@test.com", Password: hash, Role: models.RoleUser}
	h.DB.Create(user)

	w := httptest.NewRecorder()
	r := withParams(httptest.NewRequest(http.MethodPut, "/",
		strings.NewReader(`{"currentPassword":"wrong","newPassword":"newpass"}`)), user, nil)
	h.UpdatePassword(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password: expected 401 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	r2 := withParams(httptest.NewRequest(http.MethodPut, "/",
		strings.NewReader(`{"currentPassword":"123456","newPassword":"newpass"}`)), user, nil)
	h.UpdatePassword(w2, r2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}
	if env := decodeEnvelope(t, w2.Body.Bytes()); env.Token == "" {
		t.Fatalf("expected fresh token after password change")
	}
}
