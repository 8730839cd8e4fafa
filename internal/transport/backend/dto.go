package backend

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Schema selects the field naming of the registration response.
type Schema string

// Supported registration response schemas.
const (
	SchemaCamel Schema = "camel"
	SchemaSnake Schema = "snake"
)

// IsValid reports whether s is a known schema.
func (s Schema) IsValid() bool {
	return s == SchemaCamel || s == SchemaSnake
}

type registerPayload struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type camelStorageDTO struct {
	MongoAddress    string `json:"mongoAddress"`
	MongoDatabase   string `json:"mongoDatabase"`
	MongoCollection string `json:"mongoCollection"`
	QdrantAddress   string `json:"qdrantAddress"`
}

type snakeStorageDTO struct {
	MongoAddress    string `json:"mongo_address"`
	MongoDatabase   string `json:"mongo_database"`
	MongoCollection string `json:"mongo_collection"`
	QdrantAddress   string `json:"qdrant_address"`
}

func (d camelStorageDTO) toDomain() domain.StorageConfig {
	return domain.StorageConfig{
		MongoAddress:    d.MongoAddress,
		MongoDatabase:   d.MongoDatabase,
		MongoCollection: d.MongoCollection,
		QdrantAddress:   d.QdrantAddress,
	}
}

func (d snakeStorageDTO) toDomain() domain.StorageConfig {
	return domain.StorageConfig{
		MongoAddress:    d.MongoAddress,
		MongoDatabase:   d.MongoDatabase,
		MongoCollection: d.MongoCollection,
		QdrantAddress:   d.QdrantAddress,
	}
}

// decodeStorage decodes a registration response body with the given schema.
func decodeStorage(s Schema, body []byte) (domain.StorageConfig, error) {
	switch s {
	case SchemaCamel:
		var d camelStorageDTO
		if err := json.Unmarshal(body, &d); err != nil {
			return domain.StorageConfig{}, fmt.Errorf("decode %s response: %w", s, err)
		}
		return d.toDomain(), nil
	case SchemaSnake:
		var d snakeStorageDTO
		if err := json.Unmarshal(body, &d); err != nil {
			return domain.StorageConfig{}, fmt.Errorf("decode %s response: %w", s, err)
		}
		return d.toDomain(), nil
	default:
		return domain.StorageConfig{}, fmt.Errorf("unknown response schema %q", s)
	}
}
