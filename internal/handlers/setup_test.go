package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dylanbaghel/devcamper-api/internal/middleware"
	"github.com/dylanbaghel/devcamper-api/internal/models"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Bootcamp{}, &models.Course{}, &models.Review{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "Tester", Email: email, Password: "hash", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedBootcamp(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Bootcamp {
	t.Helper()
	b := &models.Bootcamp{
		Name: name, Slug: models.Slugify(name), Description: "d", Address: "a",
		Careers: models.Careers{"Web Development"}, UserID: ownerID,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed bootcamp: %v", err)
	}
	return b
}

// withParams injects chi URL parameters and optionally the acting user into
// the request context, mimicking what the router and Protect middleware do.
func withParams(r *http.Request, user *models.User, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if user != nil {
		ctx = middleware.WithUser(ctx, user)
	}
	return r.WithContext(ctx)
}

type envelope struct {
	Success    bool            `json:"success"`
	Token      string          `json:"token"`
	Count      *int            `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
	Data       json.RawMessage `json:"data"`
	Msg        string          `json:"msg"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, body)
	}
	return env
}
