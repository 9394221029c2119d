package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oneday-labs/intake-api/internal/models"
)

// DocumentRepository persists submission records in the document store.
type DocumentRepository struct {
	collection *mongo.Collection
}

// NewDocumentRepository constructs the repository bound to one collection.
func NewDocumentRepository(client *mongo.Client, database, collection string) *DocumentRepository {
	return &DocumentRepository{collection: client.Database(database).Collection(collection)}
}

// NewDocumentID allocates a document identifier without touching the store,
// so the log row can embed it before the record exists.
func (r *DocumentRepository) NewDocumentID() string {
	return primitive.NewObjectID().Hex()
}

// Create writes the record at its pre-allocated identifier.
func (r *DocumentRepository) Create(ctx context.Context, record *models.SubmissionRecord) error {
	id, err := primitive.ObjectIDFromHex(record.DocID)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", record.DocID, err)
	}
	record.ID = id

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert submission record: %w", err)
	}
	return nil
}
