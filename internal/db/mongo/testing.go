package mongo

import mongodriver "go.mongodb.org/mongo-driver/mongo"

// NewStoreForTest creates a Store over an already connected client and collection (test-only).
func NewStoreForTest(client *mongodriver.Client, coll *mongodriver.Collection) *Store {
	return &Store{client: client, database: coll.Database(), coll: coll}
}
