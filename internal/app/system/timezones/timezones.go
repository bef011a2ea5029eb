// Package timezones validates church time zones and lists the curated set
// offered to administrators.
package timezones

import (
	"sort"
	"sync"
	"time"

	// Embedded zone database so validation does not depend on the host.
	_ "time/tzdata"
)

// Zone is one selectable IANA zone.
type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region"`
}

var curated = []Zone{
	{"America/Mexico_City", "Ciudad de México", "México"},
	{"America/Monterrey", "Monterrey", "México"},
	{"America/Tijuana", "Tijuana", "México"},
	{"America/Cancun", "Cancún", "México"},
	{"America/Guatemala", "Guatemala", "Centroamérica"},
	{"America/El_Salvador", "San Salvador", "Centroamérica"},
	{"America/Tegucigalpa", "Tegucigalpa", "Centroamérica"},
	{"America/Managua", "Managua", "Centroamérica"},
	{"America/Costa_Rica", "San José", "Centroamérica"},
	{"America/Panama", "Panamá", "Centroamérica"},
	{"America/Santo_Domingo", "Santo Domingo", "Caribe"},
	{"America/Puerto_Rico", "San Juan", "Caribe"},
	{"America/Havana", "La Habana", "Caribe"},
	{"America/Bogota", "Bogotá", "Sudamérica"},
	{"America/Caracas", "Caracas", "Sudamérica"},
	{"America/Lima", "Lima", "Sudamérica"},
	{"America/Guayaquil", "Guayaquil", "Sudamérica"},
	{"America/La_Paz", "La Paz", "Sudamérica"},
	{"America/Santiago", "Santiago", "Sudamérica"},
	{"America/Argentina/Buenos_Aires", "Buenos Aires", "Sudamérica"},
	{"America/Asuncion", "Asunción", "Sudamérica"},
	{"America/Montevideo", "Montevideo", "Sudamérica"},
	{"America/New_York", "Eastern (US)", "Estados Unidos"},
	{"America/Chicago", "Central (US)", "Estados Unidos"},
	{"America/Denver", "Mountain (US)", "Estados Unidos"},
	{"America/Los_Angeles", "Pacific (US)", "Estados Unidos"},
	{"Europe/Madrid", "Madrid", "Europa"},
	{"UTC", "UTC", "Otro"},
}

var (
	sortOnce sync.Once
	sorted   []Zone
)

// All returns the curated zones ordered by region, then label.
func All() []Zone {
	sortOnce.Do(func() {
		sorted = append([]Zone(nil), curated...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Region != sorted[j].Region {
				return sorted[i].Region < sorted[j].Region
			}
			return sorted[i].Label < sorted[j].Label
		})
	})
	return sorted
}

// Valid reports whether id is a loadable IANA zone. Zones outside the
// curated list are accepted.
func Valid(id string) bool {
	if id == "" || id == "Local" {
		return false
	}
	_, err := time.LoadLocation(id)
	return err == nil
}

// Label returns the curated label for id, or id itself.
func Label(id string) string {
	for _, z := range curated {
		if z.ID == id {
			return z.Label
		}
	}
	return id
}
