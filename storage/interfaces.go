package storage

import "practo-scraper/models"

// RecordWriter defines a sink for validated clinic records
type RecordWriter interface {
	Append(records []*models.ClinicRecord) error
	Close() error
}
