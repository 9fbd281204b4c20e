package models

import "time"

// CarTags is the fixed descriptive triple attached to every listing.
// All three keys are required on create; on update each key is merged
// individually.
type CarTags struct {
	CarType string `json:"car_type"`
	Company string `json:"company"`
	Dealer  string `json:"dealer"`
}

// Car is a vehicle listing owned by exactly one user. Images holds the
// ordered media URLs; 1 <= len(Images) <= 10 at all times after creation.
type Car struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Tags        CarTags   `json:"tags"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
