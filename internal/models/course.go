package models

import "time"

// ValidSkills enumerates accepted course minimum skill levels.
var ValidSkills = []string{"beginner", "intermediate", "advanced"}

type Course struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Title                string    `gorm:"size:255;not null" json:"title"`
	Description          string    `gorm:"not null" json:"description"`
	Weeks                string    `gorm:"not null" json:"weeks"`
	Tuition              float64   `gorm:"not null" json:"tuition"`
	MinimumSkill         string    `gorm:"size:20;not null" json:"minimumSkill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`
	BootcampID           uint      `gorm:"index;not null" json:"bootcamp"`
	UserID               uint      `gorm:"index;not null" json:"user"`
}

func (c *Course) OwnerID() uint { return c.UserID }
