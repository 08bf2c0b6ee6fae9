package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dylanbaghel/devcamper-api/internal/aggregates"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/policy"

	"gorm.io/gorm"
)

func newReviewHandler(t *testing.T) (*ReviewHandler, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewReviewHandler(db, policy.NewGate(), aggregates.NewUpdater(db)), db
}

func TestReviewCreateUpdatesAverageRating(t *testing.T) {
	h, db := newReviewHandler(t)
	owner := seedUser(t, db, "owner@test", models.RolePublisher)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	bob := seedUser(t, db, "bob@test", models.RoleUser)
	b := seedBootcamp(t, db, "Devworks", owner.ID)
	params := map[string]string{"bootcampId": fmt.Sprint(b.ID)}

	w := httptest.NewRecorder()
	h.Create(w, withParams(httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"title":"Great","text":"learned a lot","rating":8}`)), alice, params))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	h.Create(w2, withParams(httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"title":"Good","text":"solid","rating":9}`)), bob, params))
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w2.Code)
	}

	var got models.Bootcamp
	db.First(&got, b.ID)
	if got.AverageRating == nil || *got.AverageRating != 8.5 {
		t.Fatalf("expected averageRating 8.5 (unrounded), got %v", got.AverageRating)
	}
}

func TestReviewDuplicatePerUserRejected(t *testing.T) {
	h, db := newReviewHandler(t)
	owner := seedUser(t, db, "owner@test", models.RolePublisher)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	b := seedBootcamp(t, db, "Devworks", owner.ID)
	params := map[string]string{"bootcampId": fmt.Sprint(b.ID)}
	body := `{"title":"Great","text":"learned a lot","rating":8}`

	w := httptest.NewRecorder()
	h.Create(w, withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), alice, params))
	if w.Code != http.StatusCreated {
		t.Fatalf("first review: expected 201 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	h.Create(w2, withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), alice, params))
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("second review: expected 400 got %d body=%s", w2.Code, w2.Body.String())
	}
	if !strings.Contains(w2.Body.String(), "Duplicate resource not allowed") {
		t.Fatalf("unexpected body %s", w2.Body.String())
	}
}

func TestReviewRatingRange(t *testing.T) {
	h, db := newReviewHandler(t)
	owner := seedUser(t, db, "owner@test", models.RolePublisher)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	b := seedBootcamp(t, db, "Devworks", owner.ID)
	params := map[string]string{"bootcampId": fmt.Sprint(b.ID)}

	for _, body := range []string{
		`{"title":"t","text":"x","rating":0}`,
		`{"title":"t","text":"x","rating":11}`,
	} {
		w := httptest.NewRecorder()
		h.Create(w, withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), alice, params))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", body, w.Code)
		}
	}
}

func TestReviewUpdateOwnershipAndRecompute(t *testing.T) {
	h, db := newReviewHandler(t)
	owner := seedUser(t, db, "owner@test", models.RolePublisher)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	bob := seedUser(t, db, "bob@test", models.RoleUser)
	b := seedBootcamp(t, db, "Devworks", owner.ID)
	review := models.Review{Title: "t", Text: "x", Rating: 4, BootcampID: b.ID, UserID: alice.ID}
	db.Create(&review)
	params := map[string]string{"id": fmt.Sprint(review.ID)}

	w := httptest.NewRecorder()
	h.Update(w, withParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rating":10}`)), bob, params))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author: expected 403 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	h.Update(w2, withParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"rating":10}`)), alice, params))
	if w2.Code != http.StatusOK {
		t.Fatalf("author: expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}

	var got models.Bootcamp
	db.First(&got, b.ID)
	if got.AverageRating == nil || *got.AverageRating != 10 {
		t.Fatalf("expected averageRating 10 after update, got %v", got.AverageRating)
	}
}

func TestReviewDeleteClearsAverage(t *testing.T) {
	h, db := newReviewHandler(t)
	owner := seedUser(t, db, "owner@test", models.RolePublisher)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	b := seedBootcamp(t, db, "Devworks", owner.ID)
	review := models.Review{Title: "t", Text: "x", Rating: 4, BootcampID: b.ID, UserID: alice.ID}
	db.Create(&review)
	h.Agg.OnReviewChange(b.ID)

	w := httptest.NewRecorder()
	h.Delete(w, withParams(httptest.NewRequest(http.MethodDelete, "/", nil), alice,
		map[string]string{"id": fmt.Sprint(review.ID)}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	var got models.Bootcamp
	db.First(&got, b.ID)
	if got.AverageRating != nil {
		t.Fatalf("expected nil averageRating after last review deleted, got %v", *got.AverageRating)
	}
}

func TestReviewCreateRequiresBootcamp(t *testing.T) {
	h, db := newReviewHandler(t)
	alice := seedUser(t, db, "alice@test", models.RoleUser)

	w := httptest.NewRecorder()
	h.Create(w, withParams(httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"title":"t","text":"x","rating":5}`)), alice,
		map[string]string{"bootcampId": "999"}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
