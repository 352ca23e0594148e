package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/models"
)

const dateLayout = "2006-01-02"

type SlotHandler struct {
	supabase *supa.Client
	config   *config.Config
}

func NewSlotHandler(supabase *supa.Client, cfg *config.Config) *SlotHandler {
	return &SlotHandler{
		supabase: supabase,
		config:   cfg,
	}
}

// GetClinicSlots returns the availability view for a clinic, filtered to
// ?date or the coming 7 days.
func (h *SlotHandler) GetClinicSlots(c *gin.Context) {
	views, apiErr := h.slotViews(c.Param("id"), c.Query("date"))
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetClinicSlotsGrouped returns the same view partitioned by date.
func (h *SlotHandler) GetClinicSlotsGrouped(c *gin.Context) {
	views, apiErr := h.slotViews(c.Param("id"), c.Query("date"))
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, groupSlotsByDate(views))
}

// slotViews loads the slot window, then resolves availability against the
// scheduled appointments holding those slots in a single batched query.
func (h *SlotHandler) slotViews(clinicID, date string) ([]models.SlotView, *apiError) {
	query := h.supabase.From("slots").
		Select("*", "", false).
		Eq("clinic_id", clinicID)

	if date != "" {
		query = query.Eq("date", date)
	} else {
		today := time.Now().Format(dateLayout)
		nextWeek := time.Now().AddDate(0, 0, 7).Format(dateLayout)
		query = query.Gte("date", today).Lte("date", nextWeek)
	}
	query = query.Order("date", &postgrest.OrderOpts{Ascending: true})

	var slots []models.Slot
	if err := fetch(query, h.config.QueryTimeout, &slots); err != nil {
		return nil, storeErr(err)
	}
	if len(slots) == 0 {
		return []models.SlotView{}, nil
	}
	sortSlots(slots)

	slotIDs := make([]string, 0, len(slots))
	for _, s := range slots {
		slotIDs = append(slotIDs, s.ID)
	}

	var appointments []models.Appointment
	err := fetch(h.supabase.From("appointments").
		Select("slot_id, patient_name", "", false).
		In("slot_id", slotIDs).
		Eq("status", models.StatusScheduled),
		h.config.QueryTimeout, &appointments)
	if err != nil {
		return nil, storeErr(err)
	}

	return annotateSlots(slots, buildBookedIndex(appointments)), nil
}

// CreateSlot adds a bookable slot to a clinic the caller owns.
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleHospital {
		respondError(c, accessDeniedErr("Only hospitals can create slots"))
		return
	}
	userID, _ := c.Get("user_id")
	clinicID := c.Param("id")

	var req models.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Missing required fields"))
		return
	}

	// Verify clinic belongs to this hospital
	var clinics []models.Clinic
	err := fetch(h.supabase.From("clinics").
		Select("hospital_id", "", false).
		Eq("id", clinicID),
		h.config.QueryTimeout, &clinics)
	if err != nil || len(clinics) == 0 || clinics[0].HospitalID != userID.(string) {
		respondError(c, accessDeniedErr("Clinic not found or access denied"))
		return
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 30
	}

	slotData := map[string]interface{}{
		"id":               uuid.New().String(),
		"clinic_id":        clinicID,
		"date":             req.Date,
		"time":             req.Time,
		"duration_minutes": duration,
		"is_available":     true,
	}
	if req.DoctorName != nil && *req.DoctorName != "" {
		slotData["doctor_name"] = *req.DoctorName
	}

	var created []models.Slot
	err = fetch(h.supabase.From("slots").Insert(slotData, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		// (clinic_id, date, time, doctor_name) is unique in the store
		if isDuplicateErr(err) {
			respondError(c, conflictErr("Slot already exists"))
			return
		}
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("Slot creation failed"))
		return
	}

	c.JSON(http.StatusOK, models.IDResponse{ID: created[0].ID, Message: "Slot created successfully"})
}
