package models

// Headers is the fixed output column order for the clinic table.
var Headers = []string{"City", "Clinic", "Location", "Fee", "Experience", "Phone", "Timestamp"}

// RawRecord represents unprocessed field text pulled from a single listing card
type RawRecord struct {
	City       string
	Clinic     string
	Location   string
	Fee        string // e.g. "Consultation Fee ₹500 at clinic"
	Experience string // e.g. "12 years experience overall"
	Phone      string
}

// ClinicRecord represents a cleaned, validated listing ready for storage
type ClinicRecord struct {
	City       string
	Clinic     string
	Location   string
	Fee        string // numeric string or "N/A"
	Experience string // "<N> years" or "N/A"
	Phone      string // "+91-XXXXXXXXXX" or "N/A"
	Timestamp  string
}

// DedupKey identifies a listing across pages, cities and runs. Exact
// concatenation of the cleaned values, case-sensitive.
func (r *ClinicRecord) DedupKey() string {
	return r.Clinic + "_" + r.Location
}

// DedupKeyFor builds the same key from stored column values.
func DedupKeyFor(clinic, location string) string {
	return clinic + "_" + location
}

// Row returns the record fields in output column order.
func (r *ClinicRecord) Row() []string {
	return []string{r.City, r.Clinic, r.Location, r.Fee, r.Experience, r.Phone, r.Timestamp}
}
