package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dylanbaghel/devcamper-api/internal/gate"
	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/middleware"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/policy"
	"github.com/dylanbaghel/devcamper-api/internal/query"
	"github.com/dylanbaghel/devcamper-api/internal/services"
	"github.com/dylanbaghel/devcamper-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type BootcampHandler struct {
	DB       *gorm.DB
	Gate     *gate.Gate[*models.User]
	Limit    *policy.PublisherLimit
	Geocoder services.Geocoder
	Photos   *services.PhotoStore
}

func NewBootcampHandler(db *gorm.DB, g *gate.Gate[*models.User], limit *policy.PublisherLimit, geo services.Geocoder, photos *services.PhotoStore) *BootcampHandler {
	return &BootcampHandler{DB: db, Gate: g, Limit: limit, Geocoder: geo, Photos: photos}
}

// List: GET /api/v1/bootcamps
func (h *BootcampHandler) List(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query())
	var bootcamps []models.Bootcamp
	pagination, err := query.Run(h.DB, bootcampSchema, params, &models.Bootcamp{}, &bootcamps)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.List(w, len(bootcamps), pagination, bootcamps)
}

// Get: GET /api/v1/bootcamps/{id}
func (h *BootcampHandler) Get(w http.ResponseWriter, r *http.Request) {
	bootcamp, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, bootcamp)
}

type bootcampReq struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Website       string         `json:"website"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	Address       string         `json:"address"`
	Careers       models.Careers `json:"careers"`
	Housing       bool           `json:"housing"`
	JobAssistance bool           `json:"jobAssistance"`
	JobGuarantee  bool           `json:"jobGuarantee"`
	AcceptGi      bool           `json:"acceptGi"`
}

func (req *bootcampReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.MaxLen("name", req.Name, 50, v)
	validation.Required("description", req.Description, v)
	validation.MaxLen("description", req.Description, 500, v)
	validation.MaxLen("phone", req.Phone, 20, v)
	validation.Email("email", req.Email, v)
	validation.Required("address", req.Address, v)
	if len(req.Careers) == 0 {
		v["careers"] = "is required"
	}
	for _, c := range req.Careers {
		validation.OneOf("careers", c, models.ValidCareers, v)
	}
	return v
}

// Create: POST /api/v1/bootcamps
func (h *BootcampHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req bootcampReq
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	loc, err := h.geocode(r.Context(), req.Address)
	if err != nil {
		httpx.WriteError(w, httpx.ServerError("Could not geocode address"))
		return
	}

	bootcamp := models.Bootcamp{
		Name:          req.Name,
		Slug:          models.Slugify(req.Name),
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Location:      loc,
		Careers:       req.Careers,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
		UserID:        user.ID,
	}

	// The check-then-insert below must not interleave with another creation
	// by the same non-admin user.
	unlock := h.Limit.Lock(user.ID)
	defer unlock()
	if err := h.Limit.Check(user); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Create(&bootcamp).Error; err != nil {
		httpx.WriteError(w, httpx.FromDB(err, "Bootcamp"))
		return
	}
	httpx.OK(w, http.StatusCreated, bootcamp)
}

type bootcampUpdate struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Website       *string         `json:"website"`
	Phone         *string         `json:"phone"`
	Email         *string         `json:"email"`
	Address       *string         `json:"address"`
	Careers       *models.Careers `json:"careers"`
	Housing       *bool           `json:"housing"`
	JobAssistance *bool           `json:"jobAssistance"`
	JobGuarantee  *bool           `json:"jobGuarantee"`
	AcceptGi      *bool           `json:"acceptGi"`
}

// Update: PUT /api/v1/bootcamps/{id}
func (h *BootcampHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	bootcamp, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionUpdate, "bootcamp", bootcamp); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var req bootcampUpdate
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	updates := map[string]any{}
	v := make(validation.Violations)
	if req.Name != nil {
		validation.Required("name", *req.Name, v)
		validation.MaxLen("name", *req.Name, 50, v)
		updates["name"] = *req.Name
		updates["slug"] = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		validation.Required("description", *req.Description, v)
		validation.MaxLen("description", *req.Description, 500, v)
		updates["description"] = *req.Description
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Phone != nil {
		validation.MaxLen("phone", *req.Phone, 20, v)
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		validation.Email("email", *req.Email, v)
		updates["email"] = *req.Email
	}
	if req.Careers != nil {
		for _, c := range *req.Careers {
			validation.OneOf("careers", c, models.ValidCareers, v)
		}
		updates["careers"] = *req.Careers
	}
	if req.Housing != nil {
		updates["housing"] = *req.Housing
	}
	if req.JobAssistance != nil {
		updates["job_assistance"] = *req.JobAssistance
	}
	if req.JobGuarantee != nil {
		updates["job_guarantee"] = *req.JobGuarantee
	}
	if req.AcceptGi != nil {
		updates["accept_gi"] = *req.AcceptGi
	}
	if req.Address != nil {
		validation.Required("address", *req.Address, v)
		if v.Empty() {
			loc, err := h.geocode(r.Context(), *req.Address)
			if err != nil {
				httpx.WriteError(w, httpx.ServerError("Could not geocode address"))
				return
			}
			updates["address"] = *req.Address
			updates["location_lat"] = loc.Lat
			updates["location_lng"] = loc.Lng
			updates["location_formatted_address"] = loc.FormattedAddress
			updates["location_street"] = loc.Street
			updates["location_city"] = loc.City
			updates["location_state"] = loc.State
			updates["location_zipcode"] = loc.Zipcode
			updates["location_country"] = loc.Country
		}
	}
	if !v.Empty() {
		httpx.WriteError(w, httpx.BadRequest(v.Message()))
		return
	}

	if len(updates) > 0 {
		if err := h.DB.Model(bootcamp).Updates(updates).Error; err != nil {
			httpx.WriteError(w, httpx.FromDB(err, "Bootcamp"))
			return
		}
	}
	httpx.OK(w, http.StatusOK, bootcamp)
}

// Delete: DELETE /api/v1/bootcamps/{id}
// Deletion cascades to the bootcamp's courses and reviews in one transaction.
func (h *BootcampHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	bootcamp, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionDelete, "bootcamp", bootcamp); err != nil {
		httpx.WriteError(w, err)
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bootcamp_id = ?", bootcamp.ID).Delete(&models.Course{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bootcamp_id = ?", bootcamp.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(bootcamp).Error
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, bootcamp)
}

// InRadius: GET /api/v1/bootcamps/radius/{zipcode}/{distance}
func (h *BootcampHandler) InRadius(w http.ResponseWriter, r *http.Request) {
	zipcode := chi.URLParam(r, "zipcode")
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance <= 0 {
		httpx.WriteError(w, httpx.BadRequest("Invalid distance"))
		return
	}

	loc, err := h.geocode(r.Context(), zipcode)
	if err != nil {
		httpx.WriteError(w, httpx.ServerError("Could not geocode zipcode"))
		return
	}
	radius := distance / services.EarthRadiusMiles

	var all []models.Bootcamp
	if err := h.DB.Find(&all).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	matched := make([]models.Bootcamp, 0)
	for _, b := range all {
		if services.AngularDistance(loc.Lat, loc.Lng, b.Location.Lat, b.Location.Lng) <= radius {
			matched = append(matched, b)
		}
	}
	httpx.List(w, len(matched), nil, matched)
}

// UploadPhoto: PUT /api/v1/bootcamps/{id}/photo
func (h *BootcampHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	bootcamp, err := h.find(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := policy.Authorize(h.Gate, user, gate.ActionUpdate, "bootcamp", bootcamp); err != nil {
		httpx.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, httpx.BadRequest("Please upload a file"))
		return
	}
	defer file.Close()

	name, err := h.Photos.Save(file, header, bootcamp.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.DB.Model(bootcamp).Update("photo", name).Error; err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, name)
}

func (h *BootcampHandler) find(r *http.Request) (*models.Bootcamp, error) {
	id, err := idParam(r, "bootcampId")
	if err != nil {
		return nil, err
	}
	var bootcamp models.Bootcamp
	if err := h.DB.First(&bootcamp, id).Error; err != nil {
		return nil, httpx.FromDB(err, "Bootcamp")
	}
	return &bootcamp, nil
}

func (h *BootcampHandler) geocode(ctx context.Context, address string) (models.Location, error) {
	return h.Geocoder.Geocode(ctx, address)
}
