package domain

import "fmt"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Tier records which address granularity produced a school's coordinates.
type Tier int

const (
	// TierUnresolved means neither the full address nor the Mandal geocoded.
	TierUnresolved Tier = iota
	// TierFullAddress means the school's own address geocoded.
	TierFullAddress
	// TierMandalOnly means only the Mandal centroid geocoded.
	TierMandalOnly
)

// String returns the tier name used in logs and metrics labels.
func (t Tier) String() string {
	switch t {
	case TierFullAddress:
		return "full_address"
	case TierMandalOnly:
		return "mandal_only"
	default:
		return "unresolved"
	}
}

// School is one row of the input spreadsheet, enriched during resolution.
// Coords, DistanceKm, and Tier are set by the resolution pipeline; a nil
// DistanceKm means the row never geocoded at any tier.
type School struct {
	Name     string
	Mandal   string
	Category string

	Coords     Coordinates
	DistanceKm *float64
	Tier       Tier
}

// FullAddress builds the exact-granularity lookup address for the school.
func (s School) FullAddress(district, region string) string {
	return fmt.Sprintf("%s, %s, %s, %s", s.Name, s.Mandal, district, region)
}

// MandalAddress builds the fallback lookup address at Mandal granularity.
// Schools sharing a Mandal produce identical strings, so the second resolution
// pass pays for each Mandal at most once.
func (s School) MandalAddress(district, region string) string {
	return fmt.Sprintf("%s, %s, %s", s.Mandal, district, region)
}
