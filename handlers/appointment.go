package handlers

import (
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/models"
)

type AppointmentHandler struct {
	supabase *supa.Client
	config   *config.Config
}

func NewAppointmentHandler(supabase *supa.Client, cfg *config.Config) *AppointmentHandler {
	return &AppointmentHandler{
		supabase: supabase,
		config:   cfg,
	}
}

// CreateAppointment books an appointment. Authentication is optional: with a
// patient token the identity fields come from the claims, otherwise from the
// request body (walk-in booking).
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Invalid request body"))
		return
	}

	var patientID *string
	patientName := req.PatientName
	patientPhone := req.PatientPhone
	patientEmail := req.PatientEmail

	if userID, ok := c.Get("user_id"); ok {
		role, _ := c.Get("role")
		if role == models.RolePatient {
			id := userID.(string)
			patientID = &id
			if name, ok := c.Get("name"); ok && name != "" {
				patientName = name.(string)
			}
		}
		if phone, ok := c.Get("phone"); ok && phone != "" {
			patientPhone = phone.(string)
		}
		if email, ok := c.Get("email"); ok && email != "" {
			e := email.(string)
			patientEmail = &e
		}
	}

	if req.ClinicID == "" || req.AppointmentDate == "" || req.AppointmentTime == "" ||
		patientName == "" || patientPhone == "" {
		respondError(c, validationErr("Missing required fields: clinic_id, appointment_date, appointment_time, patient_name, and patient_phone are required"))
		return
	}

	// Pre-flight slot checks. Advisory only: the authoritative re-check
	// happens after the insert.
	if req.SlotID != nil {
		var slots []models.Slot
		err := fetch(h.supabase.From("slots").
			Select("id, is_available", "", false).
			Eq("id", *req.SlotID),
			h.config.QueryTimeout, &slots)
		if err != nil || len(slots) == 0 {
			respondError(c, validationErr("Invalid slot"))
			return
		}

		booked, apiErr := h.scheduledHolders(*req.SlotID, req.AppointmentDate, req.AppointmentTime)
		if apiErr != nil {
			respondError(c, apiErr)
			return
		}
		if len(booked) > 0 {
			respondError(c, conflictErr("Slot already booked"))
			return
		}
	}

	appointmentID := uuid.New().String()
	appointmentData := map[string]interface{}{
		"id":               appointmentID,
		"clinic_id":        req.ClinicID,
		"patient_name":     patientName,
		"patient_phone":    patientPhone,
		"appointment_date": req.AppointmentDate,
		"appointment_time": req.AppointmentTime,
		"reason":           req.Reason,
		"disease":          req.Disease,
		"status":           models.StatusScheduled,
	}
	if patientID != nil {
		appointmentData["patient_id"] = *patientID
	}
	if patientEmail != nil {
		appointmentData["patient_email"] = *patientEmail
	}
	if req.SlotID != nil {
		appointmentData["slot_id"] = *req.SlotID
	}
	if req.DoctorName != nil {
		appointmentData["doctor_name"] = *req.DoctorName
	}

	var created []models.Appointment
	err := fetch(h.supabase.From("appointments").Insert(appointmentData, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("Appointment creation failed"))
		return
	}

	if req.SlotID != nil {
		// The check-then-insert above can race a concurrent booking. Re-read
		// the holders and keep only the earliest row; losers withdraw.
		booked, apiErr := h.scheduledHolders(*req.SlotID, req.AppointmentDate, req.AppointmentTime)
		if apiErr == nil && len(booked) > 1 && winner(booked).ID != appointmentID {
			if _, delErr := execute(h.supabase.From("appointments").Delete("", "").Eq("id", appointmentID), h.config.QueryTimeout); delErr != nil {
				log.Printf("[CreateAppointment] Failed to withdraw losing booking %s: %v", appointmentID, delErr)
			}
			respondError(c, conflictErr("Slot already booked"))
			return
		}

		// Flip the slot flag. The appointment stands even if this write
		// fails; the availability view treats the scheduled row as the
		// source of truth for bookedness.
		if _, err := execute(h.supabase.From("slots").
			Update(map[string]interface{}{"is_available": false}, "", "").
			Eq("id", *req.SlotID), h.config.QueryTimeout); err != nil {
			log.Printf("[CreateAppointment] Error updating slot %s: %v", *req.SlotID, err)
		}
	}

	c.JSON(http.StatusOK, models.IDResponse{ID: appointmentID, Message: "Appointment booked successfully"})
}

// scheduledHolders returns the scheduled appointments referencing a slot at
// the given date and time.
func (h *AppointmentHandler) scheduledHolders(slotID, date, timeOfDay string) ([]models.Appointment, *apiError) {
	var holders []models.Appointment
	err := fetch(h.supabase.From("appointments").
		Select("id, slot_id, patient_name, status, created_at", "", false).
		Eq("slot_id", slotID).
		Eq("appointment_date", date).
		Eq("appointment_time", timeOfDay).
		Eq("status", models.StatusScheduled),
		h.config.QueryTimeout, &holders)
	if err != nil {
		return nil, storeErr(err)
	}
	return holders, nil
}

// winner picks the booking that keeps the slot when several scheduled rows
// reference it: earliest created_at, id as the tiebreak.
func winner(holders []models.Appointment) models.Appointment {
	w := holders[0]
	for _, a := range holders[1:] {
		if a.CreatedAt.Before(w.CreatedAt) ||
			(a.CreatedAt.Equal(w.CreatedAt) && a.ID < w.ID) {
			w = a
		}
	}
	return w
}

// GetPatientAppointments lists appointments for the authenticated patient,
// or recent appointments when unauthenticated. Degrades to an empty list.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	query := h.supabase.From("appointments").
		Select("id, patient_name, patient_phone, appointment_date, appointment_time, reason, disease, doctor_name, status, clinic_id, slot_id, created_at", "", false).
		Limit(50, "")

	if userID, ok := c.Get("user_id"); ok {
		if role, _ := c.Get("role"); role == models.RolePatient {
			query = query.Eq("patient_id", userID.(string))
		}
	}

	var appointments []models.Appointment
	if err := fetch(query, h.config.QueryTimeout, &appointments); err != nil {
		log.Printf("[GetPatientAppointments] Query error: %v", err)
		c.JSON(http.StatusOK, []models.Appointment{})
		return
	}
	sortAppointments(appointments)

	c.JSON(http.StatusOK, appointments)
}

// GetAppointments lists appointments scoped to the actor: patients see their
// own, hospitals see every appointment across their clinics.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	h.listScoped(c, "")
}

// GetTodayAppointments is the dashboard's day view.
func (h *AppointmentHandler) GetTodayAppointments(c *gin.Context) {
	h.listScoped(c, time.Now().Format(dateLayout))
}

func (h *AppointmentHandler) listScoped(c *gin.Context, date string) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("role")

	query := h.supabase.From("appointments").Select("*", "", false)
	if date != "" {
		query = query.Eq("appointment_date", date)
	}

	switch role {
	case models.RolePatient:
		query = query.Eq("patient_id", userID.(string))
	case models.RoleHospital:
		clinicIDs, apiErr := h.clinicIDsFor(userID.(string))
		if apiErr != nil {
			respondError(c, apiErr)
			return
		}
		if len(clinicIDs) == 0 {
			c.JSON(http.StatusOK, []models.AppointmentView{})
			return
		}
		query = query.In("clinic_id", clinicIDs)
	}

	var appointments []models.Appointment
	if err := fetch(query, h.config.QueryTimeout, &appointments); err != nil {
		respondError(c, storeErr(err))
		return
	}
	sortAppointments(appointments)

	c.JSON(http.StatusOK, h.attachClinicNames(appointments))
}

// GetHospitalAppointments lists every appointment across the hospital's
// clinics.
func (h *AppointmentHandler) GetHospitalAppointments(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleHospital {
		respondError(c, accessDeniedErr("Access denied"))
		return
	}
	h.listScoped(c, "")
}

// UpdateAppointmentStatus moves an appointment between scheduled, completed
// and cancelled. Only the owning patient or the hospital behind the clinic
// may do so.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Status is required"))
		return
	}
	if !models.ValidStatus(req.Status) {
		respondError(c, validationErr("Invalid status. Must be scheduled, completed or cancelled"))
		return
	}

	appointment, apiErr := h.loadAuthorized(c, appointmentID)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	_, err := execute(h.supabase.From("appointments").
		Update(map[string]interface{}{"status": req.Status}, "", "").
		Eq("id", appointment.ID), h.config.QueryTimeout)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Appointment updated successfully"})
}

// DeleteAppointment removes an appointment and releases its slot. The slot
// restore is best-effort: the deletion stands even if the flag write fails.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	appointment, apiErr := h.loadAuthorized(c, appointmentID)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	_, err := execute(h.supabase.From("appointments").Delete("", "").Eq("id", appointment.ID), h.config.QueryTimeout)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}

	if appointment.SlotID != nil {
		if _, err := execute(h.supabase.From("slots").
			Update(map[string]interface{}{"is_available": true}, "", "").
			Eq("id", *appointment.SlotID), h.config.QueryTimeout); err != nil {
			log.Printf("[DeleteAppointment] Error releasing slot %s: %v", *appointment.SlotID, err)
		}
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Appointment deleted successfully"})
}

// GetStats reports dashboard counters scoped to the actor.
func (h *AppointmentHandler) GetStats(c *gin.Context) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("role")
	today := time.Now().Format(dateLayout)

	scope := func() *appointmentScope {
		switch role {
		case models.RoleHospital:
			clinicIDs, apiErr := h.clinicIDsFor(userID.(string))
			if apiErr != nil || len(clinicIDs) == 0 {
				return nil
			}
			return &appointmentScope{clinicIDs: clinicIDs}
		case models.RolePatient:
			id := userID.(string)
			return &appointmentScope{patientID: &id}
		default:
			return &appointmentScope{}
		}
	}()
	if scope == nil {
		c.JSON(http.StatusOK, models.Stats{})
		return
	}

	total, err := h.countAppointments(scope, "", "")
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	todayCount, err := h.countAppointments(scope, today, "")
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	pending, err := h.countAppointments(scope, "", models.StatusScheduled)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}

	var followups []models.Followup
	followupCount := 0
	if err := fetch(h.supabase.From("followups").Select("id", "", false), h.config.QueryTimeout, &followups); err == nil {
		followupCount = len(followups)
	}

	c.JSON(http.StatusOK, models.Stats{
		Total:     total,
		Today:     todayCount,
		Followups: followupCount,
		Pending:   pending,
	})
}

type appointmentScope struct {
	patientID *string
	clinicIDs []string
}

func (h *AppointmentHandler) countAppointments(scope *appointmentScope, date, status string) (int, error) {
	query := h.supabase.From("appointments").Select("id", "", false)
	if scope.patientID != nil {
		query = query.Eq("patient_id", *scope.patientID)
	}
	if len(scope.clinicIDs) > 0 {
		query = query.In("clinic_id", scope.clinicIDs)
	}
	if date != "" {
		query = query.Eq("appointment_date", date)
	}
	if status != "" {
		query = query.Eq("status", status)
	}

	var rows []models.Appointment
	if err := fetch(query, h.config.QueryTimeout, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// loadAuthorized fetches the appointment and verifies the caller may mutate
// it: the patient who owns it, or the hospital owning its clinic.
func (h *AppointmentHandler) loadAuthorized(c *gin.Context, appointmentID string) (*models.Appointment, *apiError) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("role")

	var appointments []models.Appointment
	err := fetch(h.supabase.From("appointments").
		Select("*", "", false).
		Eq("id", appointmentID),
		h.config.QueryTimeout, &appointments)
	if err != nil || len(appointments) == 0 {
		return nil, notFoundErr("Appointment not found")
	}
	appointment := appointments[0]

	allowed := false
	switch role {
	case models.RoleHospital:
		var clinics []models.Clinic
		err := fetch(h.supabase.From("clinics").
			Select("hospital_id", "", false).
			Eq("id", appointment.ClinicID),
			h.config.QueryTimeout, &clinics)
		allowed = err == nil && len(clinics) > 0 && clinics[0].HospitalID == userID.(string)
	case models.RolePatient:
		allowed = appointment.PatientID != nil && *appointment.PatientID == userID.(string)
	}
	if !allowed {
		return nil, accessDeniedErr("Access denied")
	}

	return &appointment, nil
}

func (h *AppointmentHandler) clinicIDsFor(hospitalID string) ([]string, *apiError) {
	var clinics []models.Clinic
	err := fetch(h.supabase.From("clinics").
		Select("id", "", false).
		Eq("hospital_id", hospitalID),
		h.config.QueryTimeout, &clinics)
	if err != nil {
		return nil, storeErr(err)
	}

	ids := make([]string, 0, len(clinics))
	for _, clinic := range clinics {
		ids = append(ids, clinic.ID)
	}
	return ids, nil
}

// attachClinicNames resolves clinic display names with one batched query.
func (h *AppointmentHandler) attachClinicNames(appointments []models.Appointment) []models.AppointmentView {
	views := make([]models.AppointmentView, 0, len(appointments))

	idSet := make(map[string]bool)
	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		if !idSet[a.ClinicID] {
			idSet[a.ClinicID] = true
			ids = append(ids, a.ClinicID)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		var clinics []models.Clinic
		err := fetch(h.supabase.From("clinics").
			Select("id, name", "", false).
			In("id", ids),
			h.config.QueryTimeout, &clinics)
		if err == nil {
			for _, clinic := range clinics {
				names[clinic.ID] = clinic.Name
			}
		}
	}

	for _, a := range appointments {
		views = append(views, models.AppointmentView{
			Appointment: a,
			ClinicName:  names[a.ClinicID],
		})
	}
	return views
}

// sortAppointments orders by date then time of day.
func sortAppointments(appointments []models.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].AppointmentDate != appointments[j].AppointmentDate {
			return appointments[i].AppointmentDate < appointments[j].AppointmentDate
		}
		return appointments[i].AppointmentTime < appointments[j].AppointmentTime
	})
}
