package policy

import (
	"sync"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/models"

	"gorm.io/gorm"
)

// PublisherLimit enforces the one-bootcamp-per-publisher rule. The
// check-then-insert must run inside a per-user critical section, otherwise
// two concurrent creations by the same non-admin could both pass the check.
type PublisherLimit struct {
	db *gorm.DB

	locks [64]sync.Mutex
}

func NewPublisherLimit(db *gorm.DB) *PublisherLimit {
	return &PublisherLimit{db: db}
}

// Lock acquires the per-user critical section and returns its release func.
// Sections are striped by user id so the lock table stays fixed-size; users
// sharing a stripe merely contend.
func (l *PublisherLimit) Lock(userID uint) func() {
	m := &l.locks[userID%uint(len(l.locks))]
	m.Lock()
	return m.Unlock
}

// Check returns 403 when a non-admin user already owns a bootcamp. Callers
// must hold Lock(user.ID) across Check and the subsequent insert.
func (l *PublisherLimit) Check(user *models.User) error {
	if user.IsAdmin() {
		return nil
	}
	var count int64
	if err := l.db.Model(&models.Bootcamp{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return httpx.Forbidden("User with id %d has already published a bootcamp", user.ID)
	}
	return nil
}
