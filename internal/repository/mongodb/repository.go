package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const (
	itemsCollection    = "items"
	countersCollection = "counters"
	itemsCounterID     = "items"
)

type itemDocument struct {
	ID         int64     `bson:"_id"`
	Name       string    `bson:"name"`
	Quantity   int       `bson:"quantity"`
	ExpiryDate time.Time `bson:"expiry_date"`
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

// ItemRepository stores items in MongoDB. Integer ids come from a counters
// collection incremented atomically on each insert.
type ItemRepository struct {
	client *mongo.Client
	dbName string
}

// NewItemRepository connects to MongoDB and returns an item repository.
func NewItemRepository(ctx context.Context, uri string, dbName string) (*ItemRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return newItemRepository(client, dbName), nil
}

func newItemRepository(client *mongo.Client, dbName string) *ItemRepository {
	return &ItemRepository{client: client, dbName: dbName}
}

func (r *ItemRepository) items() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(itemsCollection)
}

func (r *ItemRepository) counters() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(countersCollection)
}

// Create assigns the next id and inserts the item.
func (r *ItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.Item{}, err
	}

	item.ID = id
	if _, err := r.items().InsertOne(ctx, toDocument(item)); err != nil {
		return models.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return fromDocument(toDocument(item)), nil
}

// List returns every item in id order.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	cursor, err := r.items().Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, fromDocument(doc))
	}
	return items, nil
}

// Get loads a single item.
func (r *ItemRepository) Get(ctx context.Context, id int64) (models.Item, error) {
	var doc itemDocument
	if err := r.items().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Item{}, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
		}
		return models.Item{}, fmt.Errorf("failed to load item %d: %w", id, err)
	}
	return fromDocument(doc), nil
}

// Update loads the item, applies mutate and replaces the stored document.
func (r *ItemRepository) Update(ctx context.Context, id int64, mutate func(*models.Item) error) (models.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return models.Item{}, err
	}

	if err := mutate(&item); err != nil {
		return models.Item{}, err
	}
	item.ID = id

	res, err := r.items().ReplaceOne(ctx, bson.M{"_id": id}, toDocument(item))
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to replace item %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.Item{}, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	return fromDocument(toDocument(item)), nil
}

// Delete removes the item with the given id.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.items().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *ItemRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ItemRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := r.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": itemsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate item id: %w", err)
	}
	return counter.Seq, nil
}

func toDocument(item models.Item) itemDocument {
	return itemDocument{
		ID:         item.ID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		ExpiryDate: models.DateOf(item.ExpiryDate),
	}
}

func fromDocument(doc itemDocument) models.Item {
	return models.Item{
		ID:         doc.ID,
		Name:       doc.Name,
		Quantity:   doc.Quantity,
		ExpiryDate: models.DateOf(doc.ExpiryDate.UTC()),
	}
}
