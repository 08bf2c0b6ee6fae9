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

type CourseHandler struct {
	DB   *gorm.DB
	Gate *gate.Gate[*models.User]
	Agg  *aggregates.Updater
}

func NewCourseHandler(db *gorm.DB, g *gate.Gate[*models.User], agg *aggregates.Updater) *CourseHandler {
	return &CourseHandler{DB: db, Gate: g, Agg: agg}
}

// List serves both GET /api/v1/courses and the nested
// GET /api/v1/bootcamps/{bootcampId}/courses. The nested form returns every
// course of the bootcamp without pagination.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	var courses []models.Course

	if chi.URLParam(r, "bootcampId") != "" {
		bootcampID, err := idParam(r, "bootcampId")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := h.DB.Where("bootcamp_id = ?", bootcampID).Find(&courses).Error; err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.List(w, len(courses), nil, courses)
		return
	}

	params := query.Parse(r.URL.Query())
	pagination, err := query.Run(h.DB, courseSchema, params, &models.Course{}, &courses)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.List(w, len(courses), pagination, courses)
}

// Get: GET /api/v1/courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, course)
}

type courseReq struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Weeks                string  `json:"weeks"`
	Tuition              float64 `json:"tuition"`
	MinimumSkill         string  `json:"minimumSkill"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

func (req *courseReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("title", req.Title, v)
	validation.Required("description", req.Description, v)
	validation.Required("weeks", req.Weeks, v)
	validation.PositiveFloat("tuition", req.Tuition, v)
	validation.OneOf("minimumSkill", req.MinimumSkill, models.ValidSkills, v)
	return v
}

// Create: POST /api/v1/bootcamps/{bootcampId}/courses
// Requires the bootcamp to exist and the caller to own it (or be admin).
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	if err := policy.Authorize(h.Gate, user, gate.ActionUpdate, "bootcamp", &bootcamp); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var req courseReq
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	course := models.Course{
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		BootcampID:           bootcamp.ID,
		UserID:               user.ID,
	}
	if err := h.DB.Create(&course).Error; err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "Course"))
		return
	}
	h.Agg.OnCourseChange(bootcamp.ID)
	httpx.OK(w, http.StatusCreated, course)
}

type courseUpdate struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Weeks                *string  `json:"weeks"`
	Tuition              *float64 `json:"tuition"`
	MinimumSkill         *string  `json:"minimumSkill"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// Update: PUT /api/v1/courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	course, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionUpdate, "course", course); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var req courseUpdate
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	updates := map[string]any{}
	v := make(validation.Violations)
	if req.Title != nil {
		validation.Required("title", *req.Title, v)
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		validation.Required("description", *req.Description, v)
		updates["description"] = *req.Description
	}
	if req.Weeks != nil {
		validation.Required("weeks", *req.Weeks, v)
		updates["weeks"] = *req.Weeks
	}
	if req.Tuition != nil {
		validation.PositiveFloat("tuition", *req.Tuition, v)
		updates["tuition"] = *req.Tuition
	}
	if req.MinimumSkill != nil {
		validation.OneOf("minimumSkill", *req.MinimumSkill, models.ValidSkills, v)
		updates["minimum_skill"] = *req.MinimumSkill
	}
	if req.ScholarshipAvailable != nil {
		updates["scholarship_available"] = *req.ScholarshipAvailable
	}
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	if len(updates) > 0 {
		if err := h.DB.Model(course).Updates(updates).Error; err != nil {
			httpx.WriteError(w, httpx.FromDB(err, "Course"))
			return
		}
	}
	if req.Tuition != nil {
		h.Agg.OnCourseChange(course.BootcampID)
	}
	httpx.OK(w, http.StatusOK, course)
}

// Delete: DELETE /api/v1/courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	course, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionDelete, "course", course); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Delete(course).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.Agg.OnCourseChange(course.BootcampID)
	httpx.OK(w, http.StatusOK, course)
}

func (h *CourseHandler) find(r *http.Request) (*models.Course, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	var course models.Course
	if err := h.DB.First(&course, id).Error; err != nil {
		return nil, httpx.FromDB(err, "Course")
	}
	return &course, nil
}
