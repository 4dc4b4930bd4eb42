package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaintrade "swapmeet/internal/domain/trade"
)

type AdRepository struct {
	col *mongo.Collection
}

func NewAdRepository(db *mongo.Database) *AdRepository {
	return &AdRepository{col: db.Collection("agg_ad")}
}

func (r *AdRepository) ByID(ctx context.Context, id domaintrade.AdID) (*domaintrade.Ad, error) {
	var doc adDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintrade.ErrAdNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AdRepository) Save(ctx context.Context, ad *domaintrade.Ad) error {
	doc := newAdDocument(ad)
	filter := bson.M{"_id": doc.ID, "version": ad.Version}
	doc.Version = ad.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	ad.Version = doc.Version
	return nil
}

type adDocument struct {
	ID        string `bson:"_id"`
	OwnerID   string `bson:"owner_id"`
	Title     string `bson:"title"`
	PhotoURL  string `bson:"photo_url"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
	Version   int64  `bson:"version"`
}

func newAdDocument(a *domaintrade.Ad) adDocument {
	return adDocument{
		ID:        string(a.ID),
		OwnerID:   a.OwnerID,
		Title:     a.Title,
		PhotoURL:  a.PhotoURL,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
		Version:   a.Version,
	}
}

func (d adDocument) toAggregate() *domaintrade.Ad {
	return &domaintrade.Ad{
		ID:        domaintrade.AdID(d.ID),
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		PhotoURL:  d.PhotoURL,
		Status:    domaintrade.AdStatus(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}
