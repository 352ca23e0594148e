package models

import "time"

type Followup struct {
	ID            string    `json:"id" db:"id"`
	AppointmentID *string   `json:"appointment_id,omitempty" db:"appointment_id"`
	PatientName   string    `json:"patient_name" db:"patient_name"`
	PatientPhone  string    `json:"patient_phone" db:"patient_phone"`
	FollowupDate  string    `json:"followup_date" db:"followup_date"`
	FollowupTime  string    `json:"followup_time" db:"followup_time"`
	Reason        string    `json:"reason" db:"reason"`
	DoctorName    string    `json:"doctor_name" db:"doctor_name"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateFollowupRequest struct {
	AppointmentID *string `json:"appointment_id,omitempty"`
	PatientName   string  `json:"patient_name" binding:"required"`
	PatientPhone  string  `json:"patient_phone" binding:"required"`
	FollowupDate  string  `json:"followup_date" binding:"required"`
	FollowupTime  string  `json:"followup_time" binding:"required"`
	Reason        string  `json:"reason"`
	DoctorName    string  `json:"doctor_name"`
}
