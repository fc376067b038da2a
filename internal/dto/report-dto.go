package dto

type ReportItemDTO struct {
	CounselorID    string  `json:"counselor_id"`
	FullName       string  `json:"full_name"`
	HomeRegion     string  `json:"home_region"`
	Rating         float64 `json:"rating"`
	ActiveRequests int     `json:"active_requests"`
	TotalCases     int     `json:"total_cases"`
	CompletedCases int     `json:"completed_cases"`
}
