package models

import "time"

type Slot struct {
	ID              string    `json:"id" db:"id"`
	ClinicID        string    `json:"clinic_id" db:"clinic_id"`
	Date            string    `json:"date" db:"date"`
	Time            string    `json:"time" db:"time"`
	DoctorName      *string   `json:"doctor_name,omitempty" db:"doctor_name"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// SlotView overlays the stored availability flag with the scheduled-appointment
// check: a slot is free only when the flag is true and nobody holds it.
type SlotView struct {
	Slot
	IsAvailable bool    `json:"is_available"`
	BookedBy    *string `json:"booked_by"`
}

type CreateSlotRequest struct {
	Date            string  `json:"date" binding:"required"`
	Time            string  `json:"time" binding:"required"`
	DoctorName      *string `json:"doctor_name,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
}
