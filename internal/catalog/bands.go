package catalog

// Band describes one imagery channel of the ABI instrument.
// Composite products carry Cadenced=false: they are assembled from other
// bands and have no independent capture interval, so they are never
// evaluated for auto-fetch.
type Band struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cadenced bool   `json:"cadenced"`
}

// DefaultBands is the fallback band order used when the catalog does not
// supply one. Order matters: swipe navigation walks this list.
var DefaultBands = []Band{
	{ID: "C01", Name: "Blue", Cadenced: true},
	{ID: "C02", Name: "Red", Cadenced: true},
	{ID: "C03", Name: "Veggie", Cadenced: true},
	{ID: "C04", Name: "Cirrus", Cadenced: true},
	{ID: "C05", Name: "Snow/Ice", Cadenced: true},
	{ID: "C06", Name: "Cloud Particle Size", Cadenced: true},
	{ID: "C07", Name: "Shortwave Window", Cadenced: true},
	{ID: "C08", Name: "Upper-Level Water Vapor", Cadenced: true},
	{ID: "C09", Name: "Mid-Level Water Vapor", Cadenced: true},
	{ID: "C10", Name: "Lower-Level Water Vapor", Cadenced: true},
	{ID: "C11", Name: "Cloud-Top Phase", Cadenced: true},
	{ID: "C12", Name: "Ozone", Cadenced: true},
	{ID: "C13", Name: "Clean Longwave Window", Cadenced: true},
	{ID: "C14", Name: "Longwave Window", Cadenced: true},
	{ID: "C15", Name: "Dirty Longwave Window", Cadenced: true},
	{ID: "C16", Name: "CO2 Longwave", Cadenced: true},
	{ID: "GEOCOLOR", Name: "GeoColor Composite", Cadenced: false},
}

// FindBand looks up a band by id in the given list
func FindBand(bands []Band, id string) (Band, bool) {
	for _, b := range bands {
		if b.ID == id {
			return b, true
		}
	}
	return Band{}, false
}
