package handlers

import (
	"errors"
	"net/http"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/query"
	"github.com/dylanbaghel/devcamper-api/internal/services"
	"github.com/dylanbaghel/devcamper-api/internal/validation"

	"gorm.io/gorm"
)

// UserHandler is the admin-only user management surface. Routing mounts it
// behind Protect plus RequireRoles(admin).
type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// List: GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query())
	var users []models.User
	pagination, err := query.Run(h.DB, userSchema, params, &models.User{}, &users)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.List(w, len(users), pagination, users)
}

// Get: GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

type userReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create: POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userReq
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
	validation.OneOf("role", req.Role, []string{models.RoleUser, models.RolePublisher, models.RoleAdmin}, v)
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
	httpx.OK(w, http.StatusCreated, user)
}

type userUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// Update: PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req userUpdate
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	updates := map[string]any{}
	v := make(validation.Violations)
	if req.Name != nil {
		validation.Required("name", *req.Name, v)
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		validation.Email("email", *req.Email, v)
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		validation.OneOf("role", *req.Role, []string{models.RoleUser, models.RolePublisher, models.RoleAdmin}, v)
		updates["role"] = *req.Role
	}
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}
	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			httpx.WriteError(w, httpx.FromDB(err, "User"))
			return
		}
	}
	httpx.OK(w, http.StatusOK, user)
}

// Delete: DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Delete(user).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

func (h *UserHandler) find(r *http.Request) (*models.User, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.NotFound("There is no user with this id")
		}
		return nil, err
	}
	return &user, nil
}
