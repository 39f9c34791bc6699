package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"practo-scraper/models"
)

// Validator turns raw card records into validated ClinicRecords
type Validator struct {
	feeMin          int
	feeMax          int
	timestampFormat string
}

// NewValidator creates a Validator with the given fee plausibility range
// and timestamp layout.
func NewValidator(feeMin, feeMax int, timestampFormat string) *Validator {
	return &Validator{
		feeMin:          feeMin,
		feeMax:          feeMax,
		timestampFormat: timestampFormat,
	}
}

// ValidateAndClean normalizes every field of a raw record and applies the
// required-field rules. Returns false when the record must be dropped:
// nil input, missing clinic or city, or a clinic that cleans to "N/A" or
// fewer than two characters.
func (v *Validator) ValidateAndClean(raw *models.RawRecord) (*models.ClinicRecord, bool) {
	if raw == nil {
		return nil, false
	}
	if strings.TrimSpace(raw.Clinic) == "" || strings.TrimSpace(raw.City) == "" {
		return nil, false
	}

	clinic := CleanText(raw.Clinic)
	if clinic == NotAvailable || utf8.RuneCountInString(clinic) < 2 {
		return nil, false
	}

	return &models.ClinicRecord{
		City:       strings.ToLower(CleanText(raw.City)),
		Clinic:     clinic,
		Location:   CleanText(raw.Location),
		Fee:        CleanFeeRange(raw.Fee, v.feeMin, v.feeMax),
		Experience: CleanExperience(raw.Experience),
		Phone:      CleanPhone(raw.Phone),
		Timestamp:  time.Now().Format(v.timestampFormat),
	}, true
}
