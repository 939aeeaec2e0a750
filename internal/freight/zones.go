package freight

import (
	"strings"

	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// Zone is a geographic shipping-cost grouping with a flat fee per shipment
// and an incremental cost per kilogram. The states listing is informational
// and only used for display grouping.
type Zone struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	States    []string      `json:"states"`
	BaseCost  pricing.Money `json:"baseCost"`
	CostPerKg pricing.Money `json:"costPerKg"`
}

// DefaultZones returns the static zone table. It is loaded once and never
// mutated at runtime; the first entry is the default selection.
func DefaultZones() []Zone {
	return []Zone{
		{
			ID:        "cdmx-metro",
			Name:      "CDMX y Zona Metropolitana",
			States:    []string{"Ciudad de México", "Estado de México"},
			BaseCost:  15000,
			CostPerKg: 250,
		},
		{
			ID:        "centro",
			Name:      "Centro",
			States:    []string{"Puebla", "Querétaro", "Hidalgo", "Morelos", "Tlaxcala"},
			BaseCost:  18000,
			CostPerKg: 300,
		},
		{
			ID:        "occidente",
			Name:      "Occidente y Bajío",
			States:    []string{"Jalisco", "Guanajuato", "Michoacán", "Aguascalientes", "Colima"},
			BaseCost:  22000,
			CostPerKg: 350,
		},
		{
			ID:        "norte",
			Name:      "Norte",
			States:    []string{"Nuevo León", "Coahuila", "Chihuahua", "Sonora", "Tamaulipas", "Baja California"},
			BaseCost:  25000,
			CostPerKg: 400,
		},
		{
			ID:        "sur-sureste",
			Name:      "Sur y Sureste",
			States:    []string{"Oaxaca", "Chiapas", "Veracruz", "Tabasco", "Yucatán", "Quintana Roo"},
			BaseCost:  28000,
			CostPerKg: 450,
		},
	}
}

// ZoneByID looks up a zone by identifier, falling back to the first zone when
// the id is unknown or empty.
func ZoneByID(id string, zones []Zone) Zone {
	trimmed := strings.TrimSpace(id)
	for _, zone := range zones {
		if strings.EqualFold(zone.ID, trimmed) {
			return zone
		}
	}
	if len(zones) == 0 {
		return Zone{}
	}
	return zones[0]
}
