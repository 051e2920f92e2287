package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultMongoDatabase = "db_pga"

type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, collection string) (*MongoStore, error) {
	database, err := mongoDatabase(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func mongoDatabase(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongodb uri: %w", err)
	}
	if cs.Database == "" {
		return defaultMongoDatabase, nil
	}
	return cs.Database, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoFilter(filter Filter) bson.M {
	q := bson.M{}
	if filter.InstitutionName != "" {
		q["instituicao_nome"] = filter.InstitutionName
	}
	if filter.Year != 0 {
		q["ano_referencia"] = filter.Year
	}
	if filter.MissingUnitName {
		q["$or"] = bson.A{
			bson.M{"identificacao_unidade": bson.M{"$exists": false}},
			bson.M{"identificacao_unidade.nome": bson.M{"$in": bson.A{nil, ""}}},
		}
	}
	return q
}

func (s *MongoStore) Find(ctx context.Context, filter Filter) ([]StoredDocument, error) {
	cur, err := s.coll.Find(ctx, mongoFilter(filter), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []StoredDocument{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (StoredDocument, error) {
	var doc StoredDocument
	err := s.coll.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StoredDocument{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return StoredDocument{}, err
	}
	return doc, nil
}

func (s *MongoStore) InsertOrReplace(ctx context.Context, doc StoredDocument) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	matched, err := s.replace(ctx, doc)
	if err != nil {
		return "", err
	}
	if !matched {
		if _, err := s.coll.InsertOne(ctx, doc); err != nil {
			return "", err
		}
	}
	return doc.ID, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, fn func(*StoredDocument) error) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	doc.ID = id
	matched, err := s.replace(ctx, doc)
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// replace overwrites the stored document in place. The _id is left out of
// the replacement so documents written by the web editor keep their
// ObjectID.
func (s *MongoStore) replace(ctx context.Context, doc StoredDocument) (bool, error) {
	body, err := withoutID(doc)
	if err != nil {
		return false, err
	}
	res, err := s.coll.ReplaceOne(ctx, idFilter(doc.ID), body)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// idFilter matches an id stored either as a string or, for documents created
// by the web editor, as an ObjectID whose hex form is id.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func withoutID(doc StoredDocument) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := fields[:0]
	for _, f := range fields {
		if f.Key != "_id" {
			out = append(out, f)
		}
	}
	return out, nil
}
