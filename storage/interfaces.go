package storage

import "kijiji-rentals/models"

// TableWriter is the interface any storage backend must satisfy.
type TableWriter interface {
	Write(t *models.Table) error
	Close() error
}

// TableReader loads a whole table from a source.
type TableReader interface {
	Read() (*models.Table, error)
}
