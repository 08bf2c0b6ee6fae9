package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dylanbaghel/devcamper-api/internal/aggregates"
	"github.com/dylanbaghel/devcamper-api/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed imports the JSON fixtures from dataDir (users, bootcamps, courses,
// reviews) and recomputes the denormalized averages for every bootcamp.
// User passwords in the fixtures are plaintext and get hashed on import.
func Seed(db *gorm.DB, dataDir string) error {
	// User.Password is json:"-", so fixtures carry it in a wrapper field.
	var seedUsers []struct {
		models.User
		Password string `json:"password"`
	}
	if err := readJSON(filepath.Join(dataDir, "users.json"), &seedUsers); err != nil {
		return err
	}
	users := make([]models.User, len(seedUsers))
	for i, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", su.Email, err)
		}
		users[i] = su.User
		users[i].Password = string(hash)
	}
	if len(users) > 0 {
		if err := db.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	var bootcamps []models.Bootcamp
	if err := readJSON(filepath.Join(dataDir, "bootcamps.json"), &bootcamps); err != nil {
		return err
	}
	for i := range bootcamps {
		bootcamps[i].Slug = models.Slugify(bootcamps[i].Name)
	}
	if len(bootcamps) > 0 {
		if err := db.Create(&bootcamps).Error; err != nil {
			return fmt.Errorf("seed bootcamps: %w", err)
		}
	}

	var courses []models.Course
	if err := readJSON(filepath.Join(dataDir, "courses.json"), &courses); err != nil {
		return err
	}
	if len(courses) > 0 {
		if err := db.Create(&courses).Error; err != nil {
			return fmt.Errorf("seed courses: %w", err)
		}
	}

	var reviews []models.Review
	if err := readJSON(filepath.Join(dataDir, "reviews.json"), &reviews); err != nil {
		return err
	}
	if len(reviews) > 0 {
		if err := db.Create(&reviews).Error; err != nil {
			return fmt.Errorf("seed reviews: %w", err)
		}
	}

	upd := aggregates.NewUpdater(db)
	for _, b := range bootcamps {
		if err := upd.RecomputeAverageCost(b.ID); err != nil {
			return fmt.Errorf("recompute cost for bootcamp %d: %w", b.ID, err)
		}
		if err := upd.RecomputeAverageRating(b.ID); err != nil {
			return fmt.Errorf("recompute rating for bootcamp %d: %w", b.ID, err)
		}
	}
	return nil
}

// Destroy removes all seeded data.
func Destroy(db *gorm.DB) error {
	for _, m := range []any{&models.Review{}, &models.Course{}, &models.Bootcamp{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("destroy %T: %w", m, err)
		}
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // fixture file is optional
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
