package storage

import "sleep-dashboard/models"

// TableReader is the interface any input source must satisfy.
type TableReader interface {
	Read(path string) (*models.RawTable, error)
}
