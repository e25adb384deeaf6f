package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "history"

type mongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoRecord struct {
	UserID     string    `bson:"user_id"`
	DocID      string    `bson:"doc_id"`
	VideoURL   string    `bson:"video_url"`
	Title      string    `bson:"title"`
	Transcript string    `bson:"transcript"`
	Summary    string    `bson:"summary"`
	Timestamp  time.Time `bson:"timestamp"`
}

// OpenMongo connects to MongoDB and ensures the (user_id, doc_id) unique index.
func OpenMongo(ctx context.Context, uri, database string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	collection := client.Database(database).Collection(mongoCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "doc_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create history index: %w", err)
	}

	return &mongoStore{client: client, collection: collection}, nil
}

func (s *mongoStore) Save(ctx context.Context, rec Record) error {
	rec = prepare(rec)

	filter := bson.M{"user_id": rec.UserID, "doc_id": rec.DocID}
	update := bson.M{"$set": mongoRecord{
		UserID:     rec.UserID,
		DocID:      rec.DocID,
		VideoURL:   rec.VideoURL,
		Title:      rec.Title,
		Transcript: rec.Transcript,
		Summary:    rec.Summary,
		Timestamp:  rec.Timestamp,
	}}

	if _, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("save history %s/%s: %w", rec.UserID, rec.DocID, err)
	}
	return nil
}

func (s *mongoStore) List(ctx context.Context, userID string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "doc_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		records = append(records, doc.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}

func (s *mongoStore) Get(ctx context.Context, userID, videoURL string) (Record, bool, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID, "doc_id": DocID(videoURL)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get history: %w", err)
	}
	return doc.record(), true, nil
}

func (s *mongoStore) Delete(ctx context.Context, userID, videoURL string) (bool, error) {
	res, err := s.collection.DeleteOne(ctx, bson.M{"user_id": userID, "doc_id": DocID(videoURL)})
	if err != nil {
		return false, fmt.Errorf("delete history: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d mongoRecord) record() Record {
	return Record{
		DocID:      d.DocID,
		UserID:     d.UserID,
		VideoURL:   d.VideoURL,
		Title:      d.Title,
		Transcript: d.Transcript,
		Summary:    d.Summary,
		Timestamp:  d.Timestamp.UTC(),
	}
}
