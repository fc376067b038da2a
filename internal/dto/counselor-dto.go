package dto

import (
	"github.com/aarondl/null/v8"
)

type RegisterCounselorDTO struct {
	FullName          string   `json:"full_name" validate:"required,min=3,max=120"`
	Contact           string   `json:"contact" validate:"required,max=120"`
	HomeRegion        string   `json:"home_region" validate:"required,region_code"`
	ServedRegions     []string `json:"served_regions" validate:"omitempty,dive,region_code"`
	Specializations   []string `json:"specializations" validate:"omitempty,dive,category_tag"`
	MaxActiveRequests int      `json:"max_active_requests" validate:"required,gte=1,lte=50"`
}

// UpdateCounselorDTO is a partial update; absent fields stay untouched.
type UpdateCounselorDTO struct {
	FullName          null.String `json:"full_name"`
	Contact           null.String `json:"contact"`
	HomeRegion        null.String `json:"home_region"`
	ServedRegions     []string    `json:"served_regions" validate:"omitempty,dive,region_code"`
	Specializations   []string    `json:"specializations" validate:"omitempty,dive,category_tag"`
	MaxActiveRequests null.Int    `json:"max_active_requests"`
	Available         null.Bool   `json:"available"`
}

type AvailabilityDTO struct {
	Online    bool `json:"online"`
	Available bool `json:"available"`
}

type RatingDTO struct {
	Score float64 `json:"score" validate:"required,gte=1,lte=5"`
}

type CounselorDTO struct {
	ID                 string   `json:"id"`
	FullName           string   `json:"full_name"`
	VerificationStatus string   `json:"verification_status"`
	Online             bool     `json:"online"`
	Available          bool     `json:"available"`
	HomeRegion         string   `json:"home_region"`
	ServedRegions      []string `json:"served_regions"`
	Specializations    []string `json:"specializations"`
	Rating             float64  `json:"rating"`
	ActiveRequests     int      `json:"active_requests"`
	MaxActiveRequests  int      `json:"max_active_requests"`
	TotalCases         int      `json:"total_cases"`
	CompletedCases     int      `json:"completed_cases"`
}

type ShortCounselorDTO struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	HomeRegion string  `json:"home_region"`
	Rating     float64 `json:"rating"`
}
