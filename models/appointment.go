package models

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the three appointment statuses.
// The status set is flat: any status may move to any other.
func ValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID              string    `json:"id" db:"id"`
	PatientID       *string   `json:"patient_id,omitempty" db:"patient_id"`
	ClinicID        string    `json:"clinic_id" db:"clinic_id"`
	SlotID          *string   `json:"slot_id,omitempty" db:"slot_id"`
	PatientName     string    `json:"patient_name" db:"patient_name"`
	PatientPhone    string    `json:"patient_phone" db:"patient_phone"`
	PatientEmail    *string   `json:"patient_email,omitempty" db:"patient_email"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string    `json:"appointment_time" db:"appointment_time"`
	Reason          string    `json:"reason" db:"reason"`
	Disease         string    `json:"disease" db:"disease"`
	DoctorName      *string   `json:"doctor_name,omitempty" db:"doctor_name"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// AppointmentView attaches the clinic's display name for dashboard listings.
type AppointmentView struct {
	Appointment
	ClinicName string `json:"clinic_name,omitempty"`
}

// CreateAppointmentRequest carries the booking input. Identity fields are
// overridden by the authenticated patient identity when a token is present,
// so none of them are binding-required here; the handler validates the
// resolved values instead.
type CreateAppointmentRequest struct {
	ClinicID        string  `json:"clinic_id"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime string  `json:"appointment_time"`
	SlotID          *string `json:"slot_id,omitempty"`
	Reason          string  `json:"reason"`
	Disease         string  `json:"disease"`
	DoctorName      *string `json:"doctor_name,omitempty"`
	PatientName     string  `json:"patient_name"`
	PatientPhone    string  `json:"patient_phone"`
	PatientEmail    *string `json:"patient_email,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Followups int `json:"followups"`
	Pending   int `json:"pending"`
}
