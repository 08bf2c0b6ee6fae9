// Package aggregates keeps the denormalized averages on Bootcamp in sync
// with its courses and reviews. Handlers call the On*Change triggers after a
// successful write; recompute failures are logged, never surfaced into the
// triggering request.
package aggregates

import (
	"log"
	"math"
	"sync"

	"github.com/dylanbaghel/devcamper-api/internal/models"

	"gorm.io/gorm"
)

type Updater struct {
	db *gorm.DB

	locks [64]sync.Mutex
}

func NewUpdater(db *gorm.DB) *Updater {
	return &Updater{db: db}
}

// lockFor returns the mutex serializing aggregate writes for one bootcamp.
// Concurrent course/review writes against the same bootcamp would otherwise
// race on the read-average-then-write-back sequence and lose updates. Locks
// are striped by id so the table stays fixed-size; two bootcamps sharing a
// stripe merely contend.
func (u *Updater) lockFor(bootcampID uint) *sync.Mutex {
	return &u.locks[bootcampID%uint(len(u.locks))]
}

// RecomputeAverageCost stores ceil(mean tuition) across the bootcamp's
// courses, or NULL when no courses remain.
func (u *Updater) RecomputeAverageCost(bootcampID uint) error {
	m := u.lockFor(bootcampID)
	m.Lock()
	defer m.Unlock()

	var avg *float64
	err := u.db.Model(&models.Course{}).
		Where("bootcamp_id = ?", bootcampID).
		Select("AVG(tuition)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	var cost *int
	if avg != nil {
		c := int(math.Ceil(*avg))
		cost = &c
	}
	return u.db.Model(&models.Bootcamp{}).
		Where("id = ?", bootcampID).
		Update("average_cost", cost).Error
}

// RecomputeAverageRating stores the unrounded mean rating across the
// bootcamp's reviews, or NULL when no reviews remain.
func (u *Updater) RecomputeAverageRating(bootcampID uint) error {
	m := u.lockFor(bootcampID)
	m.Lock()
	defer m.Unlock()

	var avg *float64
	err := u.db.Model(&models.Review{}).
		Where("bootcamp_id = ?", bootcampID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	return u.db.Model(&models.Bootcamp{}).
		Where("id = ?", bootcampID).
		Update("average_rating", avg).Error
}

// OnCourseChange is the post-commit trigger for course create/update/delete.
func (u *Updater) OnCourseChange(bootcampID uint) {
	if err := u.RecomputeAverageCost(bootcampID); err != nil {
		log.Printf("aggregates: average cost for bootcamp %d: %v", bootcampID, err)
	}
}

// OnReviewChange is the post-commit trigger for review create/update/delete.
func (u *Updater) OnReviewChange(bootcampID uint) {
	if err := u.RecomputeAverageRating(bootcampID); err != nil {
		log.Printf("aggregates: average rating for bootcamp %d: %v", bootcampID, err)
	}
}
