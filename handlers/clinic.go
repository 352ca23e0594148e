package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/models"
)

type ClinicHandler struct {
	supabase *supa.Client
	config   *config.Config
}

func NewClinicHandler(supabase *supa.Client, cfg *config.Config) *ClinicHandler {
	return &ClinicHandler{
		supabase: supabase,
		config:   cfg,
	}
}

// GetClinics is the public listing. It degrades to an empty list on store
// failure so the landing page never breaks on a slow database.
func (h *ClinicHandler) GetClinics(c *gin.Context) {
	disease := strings.TrimSpace(c.Query("disease"))
	city := strings.TrimSpace(c.Query("city"))
	search := strings.TrimSpace(c.Query("search"))

	query := h.supabase.From("clinics").
		Select("id, name, address, city, state", "", false).
		Limit(10, "")

	if disease != "" {
		query = query.Ilike("diseases_handled", "%"+disease+"%")
	}
	if city != "" {
		query = query.Eq("city", city)
	}
	if search != "" {
		query = query.Ilike("name", "%"+search+"%")
	}

	var clinics []models.Clinic
	if err := fetch(query, h.config.QueryTimeout, &clinics); err != nil {
		c.JSON(http.StatusOK, []models.Clinic{})
		return
	}
	if clinics == nil {
		clinics = []models.Clinic{}
	}

	c.JSON(http.StatusOK, clinics)
}

// SearchClinics filters clinics and, when the caller supplies coordinates,
// ranks them by haversine distance.
func (h *ClinicHandler) SearchClinics(c *gin.Context) {
	disease := c.Query("disease")
	city := c.Query("city")
	search := c.Query("search")

	query := h.supabase.From("clinics").Select("*", "", false)

	if disease != "" {
		query = query.Ilike("diseases_handled", "%"+disease+"%")
	}
	if city != "" {
		query = query.Eq("city", city)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Or("name.ilike."+pattern+",address.ilike."+pattern+",specialties.ilike."+pattern, "")
	}

	var clinics []models.Clinic
	if err := fetch(query, h.config.QueryTimeout, &clinics); err != nil {
		respondError(c, storeErr(err))
		return
	}

	views := h.attachHospitalNames(clinics)

	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			respondError(c, validationErr("Invalid latitude or longitude"))
			return
		}

		rankByDistance(views, lat, lon)

		if maxStr := c.Query("maxDistance"); maxStr != "" {
			maxKm, err := strconv.ParseFloat(maxStr, 64)
			if err != nil {
				respondError(c, validationErr("Invalid maxDistance"))
				return
			}
			views = filterByMaxDistance(views, maxKm)
		}
	}

	c.JSON(http.StatusOK, views)
}

func (h *ClinicHandler) GetClinicByID(c *gin.Context) {
	clinicID := c.Param("id")

	var clinics []models.Clinic
	err := fetch(h.supabase.From("clinics").
		Select("*", "", false).
		Eq("id", clinicID),
		h.config.QueryTimeout, &clinics)
	if err != nil || len(clinics) == 0 {
		respondError(c, notFoundErr("Clinic not found"))
		return
	}

	views := h.attachHospitalNames(clinics[:1])
	c.JSON(http.StatusOK, views[0])
}

func (h *ClinicHandler) CreateClinic(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleHospital {
		respondError(c, accessDeniedErr("Only hospitals can create clinics"))
		return
	}
	userID, _ := c.Get("user_id")

	var req models.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Missing required fields"))
		return
	}

	clinicData := map[string]interface{}{
		"id":               uuid.New().String(),
		"hospital_id":      userID.(string),
		"name":             req.Name,
		"address":          req.Address,
		"city":             req.City,
		"state":            req.State,
		"specialties":      req.Specialties,
		"diseases_handled": req.DiseasesHandled,
		"operating_hours":  req.OperatingHours,
	}
	if req.ZipCode != nil {
		clinicData["zip_code"] = *req.ZipCode
	}
	if req.Latitude != nil {
		clinicData["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		clinicData["longitude"] = *req.Longitude
	}
	if req.Phone != nil {
		clinicData["phone"] = *req.Phone
	}
	if req.Email != nil {
		clinicData["email"] = *req.Email
	}

	var created []models.Clinic
	err := fetch(h.supabase.From("clinics").Insert(clinicData, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("Clinic creation failed"))
		return
	}

	c.JSON(http.StatusOK, models.IDResponse{ID: created[0].ID, Message: "Clinic created successfully"})
}

func (h *ClinicHandler) GetHospitalClinics(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleHospital {
		respondError(c, accessDeniedErr("Access denied"))
		return
	}
	userID, _ := c.Get("user_id")

	var clinics []models.Clinic
	err := fetch(h.supabase.From("clinics").
		Select("*", "", false).
		Eq("hospital_id", userID.(string)).
		Order("name", &postgrest.OrderOpts{Ascending: true}),
		h.config.QueryTimeout, &clinics)
	if err != nil {
		respondError(c, storeErr(err))
		return
	}
	if clinics == nil {
		clinics = []models.Clinic{}
	}

	c.JSON(http.StatusOK, clinics)
}

// attachHospitalNames resolves hospital display names with one extra query
// over the distinct owner ids.
func (h *ClinicHandler) attachHospitalNames(clinics []models.Clinic) []models.ClinicView {
	views := make([]models.ClinicView, 0, len(clinics))

	idSet := make(map[string]bool)
	ids := make([]string, 0, len(clinics))
	for _, clinic := range clinics {
		if !idSet[clinic.HospitalID] {
			idSet[clinic.HospitalID] = true
			ids = append(ids, clinic.HospitalID)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		var owners []models.User
		err := fetch(h.supabase.From("users").
			Select("id, name", "", false).
			In("id", ids),
			h.config.QueryTimeout, &owners)
		if err == nil {
			for _, owner := range owners {
				names[owner.ID] = owner.Name
			}
		}
	}

	for _, clinic := range clinics {
		views = append(views, models.ClinicView{
			Clinic:       clinic,
			HospitalName: names[clinic.HospitalID],
		})
	}
	return views
}
