package entity

// LocationScope filtro de ubicación para lecturas.
// All=true ignora la ubicación; si no, LocationID nil selecciona el saldo central.
type LocationScope struct {
	All        bool
	LocationID *string
}

// AllLocations agrega todas las ubicaciones del producto.
func AllLocations() LocationScope { return LocationScope{All: true} }

// AtLocation limita a una ubicación; nil = saldo central.
func AtLocation(locationID *string) LocationScope { return LocationScope{LocationID: locationID} }

// Matches indica si la ubicación dada cae dentro del filtro.
func (s LocationScope) Matches(locationID *string) bool {
	if s.All {
		return true
	}
	return SameLocation(s.LocationID, locationID)
}

// SameLocation compara ubicaciones opcionales (nil == nil).
func SameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
