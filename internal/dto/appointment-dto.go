package dto

import "time"

type ScheduleBookingDTO struct {
	Note        string `json:"note" validate:"required,min=3,max=2000"`
	Category    string `json:"category" validate:"required,category_tag"`
	Region      string `json:"region" validate:"required,region_code"`
	UserContact string `json:"user_contact" validate:"required,max=120"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,hhmm_time"`
}

type AppointmentDTO struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	UserID      string    `json:"user_id"`
	Region      string    `json:"region"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CounselorID *string   `json:"counselor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
