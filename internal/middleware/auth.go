package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/services"

	"gorm.io/gorm"
)

type ctxKey string

const userCtxKey = ctxKey("user")

// Auth authenticates requests from the session token and gates routes by
// role. The token is honored from the Authorization header or the token
// cookie set at login.
type Auth struct {
	db  *gorm.DB
	svc *services.AuthService
}

func NewAuth(db *gorm.DB, svc *services.AuthService) *Auth {
	return &Auth{db: db, svc: svc}
}

// Protect rejects unauthenticated requests and stores the resolved user in
// the request context.
func (a *Auth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			if c, err := r.Cookie("token"); err == nil {
				tokenStr = c.Value
			}
		}
		if tokenStr == "" {
			httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
			return
		}
		claims, err := a.svc.ParseToken(tokenStr)
		if err != nil {
			httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
			return
		}
		var user models.User
		if err := a.db.First(&user, claims.UserID).Error; err != nil {
			// Token refers to a deleted user.
			httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
	})
}

// RequireRoles restricts a route subtree to the enumerated roles. Must run
// after Protect.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.WriteError(w, httpx.Forbidden("User role %s is unauthorized to access this route", user.Role))
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFrom extracts the authenticated user.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
