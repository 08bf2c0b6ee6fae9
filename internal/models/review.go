package models

import "time"

// Review holds a user's rating of a bootcamp. The composite unique index
// enforces one review per user per bootcamp at the storage layer.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Text       string    `gorm:"not null" json:"text"`
	Rating     float64   `gorm:"not null" json:"rating"` // 1-10
	CreatedAt  time.Time `json:"createdAt"`
	BootcampID uint      `gorm:"not null;uniqueIndex:idx_reviews_bootcamp_user" json:"bootcamp"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_bootcamp_user" json:"user"`
}

func (r *Review) OwnerID() uint { return r.UserID }
