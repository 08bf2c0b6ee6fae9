package models

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidCareers enumerates the careers a bootcamp may offer.
var ValidCareers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Careers is a set of career names stored as a comma-joined text column.
type Careers []string

func (c Careers) Value() (driver.Value, error) {
	return strings.Join(c, ","), nil
}

func (c *Careers) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = nil
	case string:
		if v == "" {
			*c = nil
			return nil
		}
		*c = strings.Split(v, ",")
	case []byte:
		return c.Scan(string(v))
	default:
		return fmt.Errorf("careers: cannot scan %T", src)
	}
	return nil
}

// Location holds the geocoded address of a bootcamp.
type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Bootcamp is the directory's central entity. AverageCost and AverageRating
// are denormalized summaries owned by the aggregates package; nil means no
// courses/reviews exist yet.
type Bootcamp struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Slug          string    `gorm:"index" json:"slug"`
	Description   string    `gorm:"size:500;not null" json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `gorm:"size:20" json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `gorm:"not null" json:"address"`
	Location      Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Careers       Careers   `gorm:"type:text;not null" json:"careers"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *int      `json:"averageCost,omitempty"`
	Photo         string    `gorm:"default:no-photo.jpg" json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`
	UserID        uint      `gorm:"index;not null" json:"user"`
}

func (b *Bootcamp) OwnerID() uint { return b.UserID }

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a bootcamp name into its URL slug
// ("Devworks Bootcamp" -> "devworks-bootcamp").
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
