package models

import "time"

type Clinic struct {
	ID              string    `json:"id" db:"id"`
	HospitalID      string    `json:"hospital_id" db:"hospital_id"`
	Name            string    `json:"name" db:"name"`
	Address         string    `json:"address" db:"address"`
	City            string    `json:"city" db:"city"`
	State           string    `json:"state" db:"state"`
	ZipCode         *string   `json:"zip_code,omitempty" db:"zip_code"`
	Latitude        *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64  `json:"longitude,omitempty" db:"longitude"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Email           *string   `json:"email,omitempty" db:"email"`
	Specialties     string    `json:"specialties" db:"specialties"`
	DiseasesHandled string    `json:"diseases_handled" db:"diseases_handled"`
	OperatingHours  string    `json:"operating_hours" db:"operating_hours"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ClinicView is the search/detail projection: the clinic row plus the owning
// hospital's display name and, when the caller supplied coordinates, the
// great-circle distance in km.
type ClinicView struct {
	Clinic
	HospitalName string   `json:"hospital_name,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
}

type CreateClinicRequest struct {
	Name            string   `json:"name" binding:"required"`
	Address         string   `json:"address" binding:"required"`
	City            string   `json:"city" binding:"required"`
	State           string   `json:"state" binding:"required"`
	ZipCode         *string  `json:"zip_code,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Email           *string  `json:"email,omitempty"`
	Specialties     string   `json:"specialties"`
	DiseasesHandled string   `json:"diseases_handled"`
	OperatingHours  string   `json:"operating_hours"`
}
