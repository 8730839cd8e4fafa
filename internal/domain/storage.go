package domain

import (
	"fmt"
	"strings"
)

// StorageConfig holds the document store coordinates resolved once at startup.
// Immutable after resolution.
type StorageConfig struct {
	MongoAddress    string
	MongoDatabase   string
	MongoCollection string
	// QdrantAddress is the vector index endpoint; carried but unused by search.
	QdrantAddress string
}

// Validate reports a missing store coordinate as ErrConfiguration.
func (c StorageConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.MongoAddress) == "" {
		missing = append(missing, "mongo address")
	}
	if strings.TrimSpace(c.MongoDatabase) == "" {
		missing = append(missing, "mongo database")
	}
	if strings.TrimSpace(c.MongoCollection) == "" {
		missing = append(missing, "mongo collection")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}
