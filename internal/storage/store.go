package storage

import (
	"context"
	"errors"
	"strings"

	"pga/internal"
	"pga/internal/config"
)

var ErrNotFound = errors.New("document not found")

// StoredDocument is a normalized document as persisted: an opaque id, the
// document fields at top level and the base64 source PDF when one was kept.
type StoredDocument struct {
	ID                          string `json:"_id" bson:"_id"`
	internal.NormalizedDocument `bson:",inline"`
	OriginalPDF                 string `json:"pdf_original_arquivo,omitempty" bson:"pdf_original_arquivo,omitempty"`
}

type Filter struct {
	InstitutionName string
	Year            int
	// MissingUnitName selects documents whose unit identification has no name.
	MissingUnitName bool
}

type Store interface {
	Find(ctx context.Context, filter Filter) ([]StoredDocument, error)
	Get(ctx context.Context, id string) (StoredDocument, error)
	// InsertOrReplace stores doc under doc.ID, assigning a new id when empty.
	InsertOrReplace(ctx context.Context, doc StoredDocument) (string, error)
	// Update loads the document, applies fn and writes it back. An error from
	// fn aborts the update.
	Update(ctx context.Context, id string, fn func(*StoredDocument) error) error
	Close() error
}

// Open picks the backend from the configuration: a MongoDB connection string
// selects MongoDB, anything else the local SQLite file.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	if isMongoURI(cfg.MongoURI) {
		return OpenMongo(ctx, cfg.MongoURI, cfg.Collection)
	}
	return OpenSQLite(cfg.DBPath)
}

func isMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}
