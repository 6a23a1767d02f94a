package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/tsunderebot/covers/internal/model"
)

// mongoGrid is the stored document. Field names match documents already
// written by the previous Node deployment, including the __v version key.
type mongoGrid struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"userId"`
	Name      string             `bson:"name"`
	Manga     bson.RawValue      `bson:"manga"`
	CreatedAt time.Time          `bson:"createdAt"`
	Version   int32              `bson:"__v"`
}

// MongoRepository stores grids in the covers collection.
type MongoRepository struct {
	client *mongo.Client
	grids  *mongo.Collection
}

// NewMongo connects to MongoDB. The database comes from the URI path,
// falling back to defaultDatabase.
func NewMongo(ctx context.Context, uri, defaultDatabase string) (*MongoRepository, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo URI: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultDatabase
	}
	if dbName == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	grids := client.Database(dbName).Collection(model.CollectionName)
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := grids.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure grid index: %w", err)
	}

	return &MongoRepository{client: client, grids: grids}, nil
}

// CreateGrid inserts grid and sets its ID to the document's ObjectID hex.
func (r *MongoRepository) CreateGrid(ctx context.Context, grid *model.Grid) error {
	manga, err := mangaToBSON(grid.Manga)
	if err != nil {
		return fmt.Errorf("failed to encode manga: %w", err)
	}

	doc := mongoGrid{
		ID:        primitive.NewObjectID(),
		UserID:    grid.UserID,
		Name:      grid.Name,
		Manga:     manga,
		CreatedAt: grid.CreatedAt,
	}

	if _, err := r.grids.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}

	grid.ID = doc.ID.Hex()
	return nil
}

// ListGridsByOwner returns every grid owned by userID, newest first.
func (r *MongoRepository) ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.grids.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list grids: %w", err)
	}

	var docs []mongoGrid
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode grids: %w", err)
	}

	grids := make([]*model.Grid, 0, len(docs))
	for _, doc := range docs {
		manga, err := mangaFromBSON(doc.Manga)
		if err != nil {
			return nil, fmt.Errorf("failed to decode manga for grid %s: %w", doc.ID.Hex(), err)
		}
		grids = append(grids, &model.Grid{
			ID:        doc.ID.Hex(),
			UserID:    doc.UserID,
			Name:      doc.Name,
			Manga:     manga,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}

	return grids, nil
}

// Ping checks the primary is reachable.
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Backend reports BackendMongo.
func (r *MongoRepository) Backend() Backend {
	return BackendMongo
}

// mangaToBSON converts an opaque JSON value into a BSON value so it is stored
// as a native document or array rather than a string.
func mangaToBSON(raw json.RawMessage) (bson.RawValue, error) {
	var wrapper struct {
		M bson.RawValue `bson:"m"`
	}

	doc := make([]byte, 0, len(raw)+6)
	doc = append(doc, `{"m":`...)
	doc = append(doc, model.NormalizeManga(raw)...)
	doc = append(doc, '}')

	if err := bson.UnmarshalExtJSON(doc, false, &wrapper); err != nil {
		return bson.RawValue{}, err
	}
	return wrapper.M, nil
}

func mangaFromBSON(v bson.RawValue) (json.RawMessage, error) {
	if v.Type == 0 || v.Type == bson.TypeNull || v.Type == bson.TypeUndefined {
		return model.NormalizeManga(nil), nil
	}

	out, err := bson.MarshalExtJSON(bson.D{{Key: "m", Value: v}}, false, false)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		M json.RawMessage `json:"m"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.M, nil
}
