package repository

import (
	"context"

	"futurecustomer/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RespondentRepo handles MongoDB operations for the respondent dataset
type RespondentRepo interface {
	Sample(ctx context.Context, n int) ([]model.Respondent, error)
	InsertMany(ctx context.Context, respondents []model.Respondent) (int, error)
	Count(ctx context.Context) (int64, error)
	Drop(ctx context.Context) error
}

type respondentRepo struct {
	collection *mongo.Collection
}

// NewRespondentRepo creates a new respondent repository
func NewRespondentRepo(db *mongo.Database) RespondentRepo {
	return &respondentRepo{
		collection: db.Collection("respondents"),
	}
}

// Sample returns up to n random respondents
func (r *respondentRepo) Sample(ctx context.Context, n int) ([]model.Respondent, error) {
	if n <= 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: n}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var respondents []model.Respondent
	if err := cursor.All(ctx, &respondents); err != nil {
		return nil, err
	}
	return respondents, nil
}

func (r *respondentRepo) InsertMany(ctx context.Context, respondents []model.Respondent) (int, error) {
	if len(respondents) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(respondents))
	for i := range respondents {
		respondents[i].ID = ""
		docs[i] = respondents[i]
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			respondents[i].ID = oid.Hex()
		}
	}
	return len(result.InsertedIDs), nil
}

func (r *respondentRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *respondentRepo) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}
