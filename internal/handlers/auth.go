package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/middleware"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/services"
	"github.com/dylanbaghel/devcamper-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB          *gorm.DB
	Svc         *services.AuthService
	Mailer      services.Mailer
	CookieDays  int
	Secure      bool
	MailTimeout time.Duration
}

func NewAuthHandler(db *gorm.DB, svc *services.AuthService, mailer services.Mailer, cookieDays int, secure bool, mailTimeout time.Duration) *AuthHandler {
	return &AuthHandler{DB: db, Svc: svc, Mailer: mailer, CookieDays: cookieDays, Secure: secure, MailTimeout: mailTimeout}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register: POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.MinLen("password", req.Password, 6, v)
	validation.OneOf("role", req.Role, models.RegisterableRoles, v)
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	user := models.User{Name: req.Name, Email: req.Email, Password: hash, Role: req.Role}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "User"))
		return
	}
	h.sendTokenResponse(w, &user, http.StatusOK)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login: POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, httpx.BadRequest("Please enter email"))
		return
	}
	if req.Password == "" {
		httpx.WriteError(w, httpx.BadRequest("Please enter password"))
		return
	}
	user, err := h.Svc.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			httpx.WriteError(w, httpx.Unauthorized("Invalid credentials"))
			return
		}
		httpx.WriteError(w, err)
		return
	}
	h.sendTokenResponse(w, user, http.StatusOK)
}

// Me: GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	httpx.OK(w, http.StatusOK, user)
}

// ForgotPassword: POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		httpx.WriteError(w, httpx.NotFound("There is no user with this email"))
		return
	}

	plainToken, err := h.Svc.NewResetToken(&user)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme(r), r.Host, plainToken)
	body := "Use this link to make a PUT request in order to change your password:\n\n" + resetURL

	ctx, cancel := context.WithTimeout(r.Context(), h.MailTimeout)
	defer cancel()
	if err := h.Mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		// Roll back the token fields so no stale reset state survives.
		if clearErr := h.Svc.ClearResetToken(&user); clearErr != nil {
			httpx.WriteError(w, clearErr)
			return
		}
		httpx.WriteError(w, httpx.ServerError("Email could not be sent"))
		return
	}
	httpx.OKMsg(w, "Email Sent")
}

// ResetPassword: PUT /api/v1/auth/resetpassword/{resettoken}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	v := make(validation.Violations)
	validation.MinLen("password", req.Password, 6, v)
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}
	if _, err := h.Svc.ResetPassword(chi.URLParam(r, "resettoken"), req.Password); err != nil {
		if err == services.ErrInvalidToken {
			httpx.WriteError(w, httpx.BadRequest("Invalid token"))
			return
		}
		httpx.WriteError(w, err)
		return
	}
	httpx.OKMsg(w, "Password Changed")
}

// UpdateDetails: PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}
	err := h.DB.Model(user).Updates(map[string]any{"name": req.Name, "email": req.Email}).Error
	if err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "User"))
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

// UpdatePassword: PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide current and new password in order to change the password"))
		return
	}
	if !services.VerifyPassword(req.CurrentPassword, user) {
		httpx.WriteError(w, httpx.Unauthorized("Password incorrect"))
		return
	}
	hash, err := services.HashPassword(req.NewPassword)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Model(user).Update("password", hash).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.sendTokenResponse(w, user, http.StatusOK)
}

// sendTokenResponse issues the session token, sets it as an HttpOnly cookie
// and returns the {success, token, data} envelope.
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, user *models.User, status int) {
	token, err := h.Svc.IssueToken(user)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(h.CookieDays) * 24 * time.Hour),
	})
	httpx.JSON(w, status, httpx.Envelope{Success: true, Token: token, Data: user})
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
