package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmops-platform/block-service/internal/domain"
)

// TemplateRepository is the MongoDB persistence adapter for the task
// template catalog
type TemplateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	repo := &TemplateRepository{
		collection: db.Collection("task_templates"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TemplateRepository) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "templateId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *TemplateRepository) Save(ctx context.Context, template *domain.TaskTemplate) error {
	template.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"templateId": template.TemplateID}
	update := bson.M{"$set": template}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *TemplateRepository) FindByID(ctx context.Context, templateID string) (*domain.TaskTemplate, error) {
	var template domain.TaskTemplate
	err := r.collection.FindOne(ctx, bson.M{"templateId": templateID}).Decode(&template)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// FindActive returns the scheduling catalog, templates currently in
// rotation.
func (r *TemplateRepository) FindActive(ctx context.Context) ([]*domain.TaskTemplate, error) {
	filter := bson.M{"status": domain.TemplateStatusActive}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var templates []*domain.TaskTemplate
	err = cursor.All(ctx, &templates)
	return templates, err
}

func (r *TemplateRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.TaskTemplate, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "templateId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var templates []*domain.TaskTemplate
	err = cursor.All(ctx, &templates)
	return templates, err
}
