package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmops-platform/block-service/internal/domain"
)

// BlockRepository is the MongoDB persistence adapter for block aggregates
type BlockRepository struct {
	collection *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	repo := &BlockRepository{
		collection: db.Collection("blocks"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *BlockRepository) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "blockId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "farmId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *BlockRepository) Save(ctx context.Context, block *domain.Block) error {
	block.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"blockId": block.BlockID}
	update := bson.M{"$set": block}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *BlockRepository) FindByID(ctx context.Context, blockID string) (*domain.Block, error) {
	var block domain.Block
	err := r.collection.FindOne(ctx, bson.M{"blockId": blockID}).Decode(&block)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *BlockRepository) FindByStatus(ctx context.Context, status domain.BlockStatus) ([]*domain.Block, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var blocks []*domain.Block
	err = cursor.All(ctx, &blocks)
	return blocks, err
}

func (r *BlockRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Block, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "blockId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var blocks []*domain.Block
	err = cursor.All(ctx, &blocks)
	return blocks, err
}

func (r *BlockRepository) Delete(ctx context.Context, blockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"blockId": blockID})
	return err
}
