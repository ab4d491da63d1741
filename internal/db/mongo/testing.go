package mongo

import "go.mongodb.org/mongo-driver/mongo"

// NewStoreForTest wraps an existing client, typically an mtest mock client.
func NewStoreForTest(c *mongo.Client) *Store {
	return &Store{client: c}
}
