package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/models"
)

const (
	followupOffsetDays   = 30
	defaultFollowupLabel = "Follow-up appointment"
	defaultDoctorName    = "Dr. Smith"
	dateTimeLayout       = "2006-01-02T15:04"
	dateTimeLayoutSec    = "2006-01-02T15:04:05"
)

type FollowupHandler struct {
	supabase *supa.Client
	config   *config.Config
}

func NewFollowupHandler(supabase *supa.Client, cfg *config.Config) *FollowupHandler {
	return &FollowupHandler{
		supabase: supabase,
		config:   cfg,
	}
}

func (h *FollowupHandler) GetFollowups(c *gin.Context) {
	var followups []models.Followup
	err := fetch(h.supabase.From("followups").
		Select("*", "", false).
		Order("followup_date", &postgrest.OrderOpts{Ascending: true}),
		h.config.QueryTimeout, &followups)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	sort.SliceStable(followups, func(i, j int) bool {
		if followups[i].FollowupDate != followups[j].FollowupDate {
			return followups[i].FollowupDate < followups[j].FollowupDate
		}
		return followups[i].FollowupTime < followups[j].FollowupTime
	})
	if followups == nil {
		followups = []models.Followup{}
	}

	c.JSON(http.StatusOK, followups)
}

// CreateFollowup schedules a standalone follow-up from explicit fields.
func (h *FollowupHandler) CreateFollowup(c *gin.Context) {
	var req models.CreateFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Missing required fields"))
		return
	}

	doctorName := req.DoctorName
	if doctorName == "" {
		doctorName = defaultDoctorName
	}

	followupData := map[string]interface{}{
		"id":            uuid.New().String(),
		"patient_name":  req.PatientName,
		"patient_phone": req.PatientPhone,
		"followup_date": req.FollowupDate,
		"followup_time": req.FollowupTime,
		"reason":        req.Reason,
		"doctor_name":   doctorName,
	}
	if req.AppointmentID != nil {
		followupData["appointment_id"] = *req.AppointmentID
	}

	var created []models.Followup
	err := fetch(h.supabase.From("followups").Insert(followupData, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("Follow-up creation failed"))
		return
	}

	c.JSON(http.StatusOK, models.IDResponse{ID: created[0].ID, Message: "Follow-up scheduled successfully"})
}

// ScheduleFollowup derives a follow-up from an existing appointment: same
// time and doctor, exactly 30 calendar days later. No conflict check is
// made, so repeated calls stack additional follow-ups.
func (h *FollowupHandler) ScheduleFollowup(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointments []models.Appointment
	err := fetch(h.supabase.From("appointments").
		Select("*", "", false).
		Eq("id", appointmentID),
		h.config.QueryTimeout, &appointments)
	if err != nil || len(appointments) == 0 {
		respondError(c, notFoundErr("Appointment not found"))
		return
	}
	appointment := appointments[0]

	followupDate, err := followupDateFor(appointment.AppointmentDate, appointment.AppointmentTime)
	if err != nil {
		respondError(c, validationErr("Appointment has an invalid date or time"))
		return
	}

	doctorName := defaultDoctorName
	if appointment.DoctorName != nil && *appointment.DoctorName != "" {
		doctorName = *appointment.DoctorName
	}

	followupData := map[string]interface{}{
		"id":             uuid.New().String(),
		"appointment_id": appointment.ID,
		"patient_name":   appointment.PatientName,
		"patient_phone":  appointment.PatientPhone,
		"followup_date":  followupDate,
		"followup_time":  appointment.AppointmentTime,
		"reason":         defaultFollowupLabel,
		"doctor_name":    doctorName,
	}

	var created []models.Followup
	err = fetch(h.supabase.From("followups").Insert(followupData, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("Follow-up creation failed"))
		return
	}

	c.JSON(http.StatusOK, models.IDResponse{ID: created[0].ID, Message: "Follow-up scheduled successfully"})
}

// followupDateFor advances the appointment's date-time by exactly 30
// calendar days and returns the date part. Stored time columns serialize
// with or without seconds, so both layouts are accepted.
func followupDateFor(date, timeOfDay string) (string, error) {
	at, err := time.Parse(dateTimeLayout, date+"T"+timeOfDay)
	if err != nil {
		at, err = time.Parse(dateTimeLayoutSec, date+"T"+timeOfDay)
		if err != nil {
			return "", err
		}
	}
	return at.AddDate(0, 0, followupOffsetDays).Format(dateLayout), nil
}
