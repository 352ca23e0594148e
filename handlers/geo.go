package handlers

import (
	"math"
	"sort"

	"github.com/Daanveer10/medcAIr/models"
)

const earthRadiusKm = 6371

// haversineKm returns the great-circle distance in kilometers between two
// latitude/longitude points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// rankByDistance attaches the distance from (lat, lon) to every clinic that
// has coordinates, rounded to 2 decimals, and sorts ascending. Clinics
// without coordinates get no distance and sort after all that have one.
func rankByDistance(clinics []models.ClinicView, lat, lon float64) {
	for i := range clinics {
		if clinics[i].Latitude == nil || clinics[i].Longitude == nil {
			continue
		}
		d := haversineKm(lat, lon, *clinics[i].Latitude, *clinics[i].Longitude)
		d = math.Round(d*100) / 100
		clinics[i].Distance = &d
	}

	sort.SliceStable(clinics, func(i, j int) bool {
		return effectiveDistance(clinics[i]) < effectiveDistance(clinics[j])
	})
}

// filterByMaxDistance drops clinics farther than maxKm. A clinic without a
// distance is infinitely far, so it is dropped too.
func filterByMaxDistance(clinics []models.ClinicView, maxKm float64) []models.ClinicView {
	kept := make([]models.ClinicView, 0, len(clinics))
	for _, c := range clinics {
		if effectiveDistance(c) <= maxKm {
			kept = append(kept, c)
		}
	}
	return kept
}

func effectiveDistance(c models.ClinicView) float64 {
	if c.Distance == nil {
		return math.Inf(1)
	}
	return *c.Distance
}
