// Package server wires the HTTP surface: middleware stack, route tree and
// the handler dependencies behind it.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/aggregates"
	"github.com/dylanbaghel/devcamper-api/internal/config"
	"github.com/dylanbaghel/devcamper-api/internal/handlers"
	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/middleware"
	"github.com/dylanbaghel/devcamper-api/internal/models"
	"github.com/dylanbaghel/devcamper-api/internal/policy"
	"github.com/dylanbaghel/devcamper-api/internal/services"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

// New builds the application router with all handlers wired.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	authSvc := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpire)
	agg := aggregates.NewUpdater(db)
	g := policy.NewGate()
	limit := policy.NewPublisherLimit(db)

	var geocoder services.Geocoder = services.NopGeocoder{}
	if cfg.GeocoderURL != "" {
		geocoder = services.NewHTTPGeocoder(cfg.GeocoderURL, cfg.GeocoderTimeout)
	} else {
		log.Println("no GEOCODER_URL configured, locations will be empty")
	}
	photos := &services.PhotoStore{Dir: cfg.FileUploadPath, MaxSize: cfg.MaxFileUpload}
	var mailer services.Mailer = services.LogMailer{}

	authH := handlers.NewAuthHandler(db, authSvc, mailer, cfg.JWTCookieExpireDays, cfg.IsProduction(), cfg.MailerTimeout)
	bootcampH := handlers.NewBootcampHandler(db, g, limit, geocoder, photos)
	courseH := handlers.NewCourseHandler(db, g, agg)
	reviewH := handlers.NewReviewHandler(db, g, agg)
	userH := handlers.NewUserHandler(db)
	auth := middleware.NewAuth(db, authSvc)

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSOrigin != "*",
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.OK(w, http.StatusOK, "OK")
	})
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.FileUploadPath))))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/forgotpassword", authH.ForgotPassword)
			r.Put("/resetpassword/{resettoken}", authH.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(auth.Protect)
				r.Get("/me", authH.Me)
				r.Put("/updatedetails", authH.UpdateDetails)
				r.Put("/updatepassword", authH.UpdatePassword)
			})
		})

		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", bootcampH.List)
			// {bootcampId} instead of {id}: chi requires one wildcard name per
			// position and the nested course/review routes share it.
			r.Get("/{bootcampId}", bootcampH.Get)
			r.Get("/radius/{zipcode}/{distance}", bootcampH.InRadius)

			r.Group(func(r chi.Router) {
				r.Use(auth.Protect, middleware.RequireRoles(models.RolePublisher, models.RoleAdmin))
				r.Post("/", bootcampH.Create)
				r.Put("/{bootcampId}", bootcampH.Update)
				r.Delete("/{bootcampId}", bootcampH.Delete)
				r.Put("/{bootcampId}/photo", bootcampH.UploadPhoto)
			})

			r.Route("/{bootcampId}/courses", func(r chi.Router) {
				r.Get("/", courseH.List)
				r.With(auth.Protect, middleware.RequireRoles(models.RolePublisher, models.RoleAdmin)).
					Post("/", courseH.Create)
			})
			r.Route("/{bootcampId}/reviews", func(r chi.Router) {
				r.Get("/", reviewH.List)
				r.With(auth.Protect, middleware.RequireRoles(models.RoleUser, models.RoleAdmin)).
					Post("/", reviewH.Create)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseH.List)
			r.Get("/{id}", courseH.Get)
			r.Group(func(r chi.Router) {
				r.Use(auth.Protect, middleware.RequireRoles(models.RolePublisher, models.RoleAdmin))
				r.Put("/{id}", courseH.Update)
				r.Delete("/{id}", courseH.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewH.List)
			r.Get("/{id}", reviewH.Get)
			r.Group(func(r chi.Router) {
				r.Use(auth.Protect, middleware.RequireRoles(models.RoleUser, models.RoleAdmin))
				r.Put("/{id}", reviewH.Update)
				r.Delete("/{id}", reviewH.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.Protect, middleware.RequireRoles(models.RoleAdmin))
			r.Get("/", userH.List)
			r.Post("/", userH.Create)
			r.Get("/{id}", userH.Get)
			r.Put("/{id}", userH.Update)
			r.Delete("/{id}", userH.Delete)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
