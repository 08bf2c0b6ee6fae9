package handlers

import "github.com/dylanbaghel/devcamper-api/internal/query"

// Query schemas: the JSON fields clients may filter, select and sort by,
// mapped to their columns. Password and reset-token fields are deliberately
// absent from the user schema.

var bootcampSchema = query.NewSchema(map[string]string{
	"id":            "id",
	"name":          "name",
	"slug":          "slug",
	"description":   "description",
	"website":       "website",
	"phone":         "phone",
	"email":         "email",
	"address":       "address",
	"careers":       "careers",
	"averageRating": "average_rating",
	"averageCost":   "average_cost",
	"photo":         "photo",
	"housing":       "housing",
	"jobAssistance": "job_assistance",
	"jobGuarantee":  "job_guarantee",
	"acceptGi":      "accept_gi",
	"createdAt":     "created_at",
	"user":          "user_id",
}).WithSetFields("careers")

var courseSchema = query.NewSchema(map[string]string{
	"id":                   "id",
	"title":                "title",
	"description":          "description",
	"weeks":                "weeks",
	"tuition":              "tuition",
	"minimumSkill":         "minimum_skill",
	"scholarshipAvailable": "scholarship_available",
	"createdAt":            "created_at",
	"bootcamp":             "bootcamp_id",
	"user":                 "user_id",
})

var reviewSchema = query.NewSchema(map[string]string{
	"id":        "id",
	"title":     "title",
	"text":      "text",
	"rating":    "rating",
	"createdAt": "created_at",
	"bootcamp":  "bootcamp_id",
	"user":      "user_id",
})

var userSchema = query.NewSchema(map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
})
