package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50).
		SetMinPoolSize(5)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// productDocument is the stored form of a product. Money is kept as
// Decimal128 so amounts survive the round trip exactly.
type productDocument struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	UnitPrice     primitive.Decimal128 `bson:"unit_price"`
	Commission    primitive.Decimal128 `bson:"commission"`
	StockQuantity int                  `bson:"stock_quantity"`
	ImageURL      string               `bson:"image_url"`
	CreatedAt     time.Time            `bson:"created_at"`
}

func toDocument(p domain.ProductRecord) (productDocument, error) {
	price, err := toDecimal128(p.UnitPrice)
	if err != nil {
		return productDocument{}, err
	}
	commission, err := toDecimal128(p.Commission)
	if err != nil {
		return productDocument{}, err
	}
	return productDocument{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		UnitPrice:     price,
		Commission:    commission,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
	}, nil
}

func (d productDocument) toRecord() (domain.ProductRecord, error) {
	price, err := decimal.NewFromString(d.UnitPrice.String())
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("product %q: bad unit_price: %w", d.ID, err)
	}
	commission, err := decimal.NewFromString(d.Commission.String())
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("product %q: bad commission: %w", d.ID, err)
	}
	return domain.ProductRecord{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		UnitPrice:     price,
		Commission:    commission,
		StockQuantity: d.StockQuantity,
		ImageURL:      d.ImageURL,
		CreatedAt:     d.CreatedAt.UTC(),
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s out of range: %w", d, err)
	}
	return v, nil
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("products"),
	}
}

func (m *MongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func (m *MongoStore) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.ProductRecord
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		p, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return products, nil
}

func (m *MongoStore) GetProduct(ctx context.Context, id string) (domain.ProductRecord, error) {
	var doc productDocument

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ProductRecord{}, fmt.Errorf("get product %q: %w", id, domain.ErrProductNotFound)
		}
		return domain.ProductRecord{}, fmt.Errorf("failed to get product: %w", err)
	}

	return doc.toRecord()
}

func (m *MongoStore) CreateProduct(ctx context.Context, p domain.ProductRecord) (domain.ProductRecord, error) {
	p, err := prepareNew(p)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	doc, err := toDocument(p)
	if err != nil {
		return domain.ProductRecord{}, err
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ProductRecord{}, fmt.Errorf("product %q: %w", p.ID, domain.ErrProductExists)
		}
		return domain.ProductRecord{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (m *MongoStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.ProductRecord, error) {
	current, err := m.GetProduct(ctx, id)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	doc, err := toDocument(updated)
	if err != nil {
		return domain.ProductRecord{}, err
	}

	result, err := m.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ProductRecord{}, fmt.Errorf("update product %q: %w", id, domain.ErrProductNotFound)
	}
	return updated, nil
}

func (m *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("delete product %q: %w", id, domain.ErrProductNotFound)
	}

	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}
