package handlers

import (
	"net/http"

	"github.com/dylanbaghel/devcamper-api/internal/aggregates"
	"github.com/dylanbaghel/devcamper-api/internal/gate"
	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/middleware"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/policy"
	"github.com/dylanbaghel/devcamper-api/internal/query"
	"github.com/dylanbaghel/devcamper-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB   *gorm.DB
	Gate *gate.Gate[*models.User]
	Agg  *aggregates.Updater
}

func NewReviewHandler(db *gorm.DB, g *gate.Gate[*models.User], agg *aggregates.Updater) *ReviewHandler {
	return &ReviewHandler{DB: db, Gate: g, Agg: agg}
}

// List serves both GET /api/v1/reviews and the nested
// GET /api/v1/bootcamps/{bootcampId}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	var reviews []models.Review

	if chi.URLParam(r, "bootcampId") != "" {
		bootcampID, err := idParam(r, "bootcampId")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := h.DB.Where("bootcamp_id = ?", bootcampID).Find(&reviews).Error; err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.List(w, len(reviews), nil, reviews)
		return
	}

	params := query.Parse(r.URL.Query())
	pagination, err := query.Run(h.DB, reviewSchema, params, &models.Review{}, &reviews)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.List(w, len(reviews), pagination, reviews)
}

// Get: GET /api/v1/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, review)
}

type reviewReq struct {
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

func (req *reviewReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("title", req.Title, v)
	validation.MaxLen("title", req.Title, 100, v)
	validation.Required("text", req.Text, v)
	validation.RangeFloat("rating", req.Rating, 1, 10, v)
	return v
}

// Create: POST /api/v1/bootcamps/{bootcampId}/reviews
// One review per user per bootcamp; a second insert trips the unique index
// and comes back as a duplicate-resource error.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	bootcampID, err := idParam(r, "bootcampId")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var bootcamp models.Bootcamp
	if err := h.DB.First(&bootcamp, bootcampID).Error; err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "Bootcamp"))
		return
	}

	var req reviewReq
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	review := models.Review{
		Title:      req.Title,
		Text:       req.Text,
		Rating:     req.Rating,
		BootcampID: bootcamp.ID,
		UserID:     user.ID,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "Review"))
		return
	}
	h.Agg.OnReviewChange(bootcamp.ID)
	httpx.OK(w, http.StatusCreated, review)
}

type reviewUpdate struct {
	Title  *string  `json:"title"`
	Text   *string  `json:"text"`
	Rating *float64 `json:"rating"`
}

// Update: PUT /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	review, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionUpdate, "review", review); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var req reviewUpdate
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	updates := map[string]any{}
	v := make(validation.Violations)
	if req.Title != nil {
		validation.Required("title", *req.Title, v)
		validation.MaxLen("title", *req.Title, 100, v)
		updates["title"] = *req.Title
	}
	if req.Text != nil {
		validation.Required("text", *req.Text, v)
		updates["text"] = *req.Text
	}
	if req.Rating != nil {
		validation.RangeFloat("rating", *req.Rating, 1, 10, v)
		updates["rating"] = *req.Rating
	}
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	if len(updates) > 0 {
		if err := h.DB.Model(review).Updates(updates).Error; err != nil {
			httpx.WriteError(w, httpx.FromDB(err, "Review"))
			return
		}
	}
	if req.Rating != nil {
		h.Agg.OnReviewChange(review.BootcampID)
	}
	httpx.OK(w, http.StatusOK, review)
}

// Delete: DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	review, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionDelete, "review", review); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Delete(review).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.Agg.OnReviewChange(review.BootcampID)
	httpx.OK(w, http.StatusOK, review)
}

func (h *ReviewHandler) find(r *http.Request) (*models.Review, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	var review models.Review
	if err := h.DB.First(&review, id).Error; err != nil {
		return nil, httpx.FromDB(err, "Review")
	}
	return &review, nil
}
