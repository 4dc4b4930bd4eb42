package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaintrade "swapmeet/internal/domain/trade"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type OfferRepository struct {
	col *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{col: db.Collection("agg_offer")}
}

func (r *OfferRepository) ByID(ctx context.Context, id domaintrade.OfferID) (*domaintrade.Offer, error) {
	var doc offerAggregateDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintrade.ErrOfferNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OfferRepository) Save(ctx context.Context, offer *domaintrade.Offer) error {
	doc := newOfferDocument(offer)
	filter := bson.M{"_id": doc.ID, "version": offer.Version}
	doc.Version = offer.Version + 1
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
	offer.Version = doc.Version
	return nil
}

func (r *OfferRepository) ListPendingByAd(ctx context.Context, adID domaintrade.AdID) ([]*domaintrade.Offer, error) {
	filter := bson.M{"ad_id": string(adID), "status": string(domaintrade.OfferPending)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*domaintrade.Offer, 0)
	for cursor.Next(ctx) {
		var doc offerAggregateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *OfferRepository) AcceptedByAd(ctx context.Context, adID domaintrade.AdID) (*domaintrade.Offer, error) {
	filter := bson.M{"ad_id": string(adID), "status": string(domaintrade.OfferAccepted)}
	var doc offerAggregateDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintrade.ErrOfferNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type offerAggregateDocument struct {
	ID         string `bson:"_id"`
	AdID       string `bson:"ad_id"`
	ProposerID string `bson:"proposer_id"`
	ImageURL   string `bson:"image_url"`
	Status     string `bson:"status"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
	Version    int64  `bson:"version"`
}

func newOfferDocument(o *domaintrade.Offer) offerAggregateDocument {
	return offerAggregateDocument{
		ID:         string(o.ID),
		AdID:       string(o.AdID),
		ProposerID: o.ProposerID,
		ImageURL:   o.ImageURL,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.UnixMilli(),
		UpdatedAt:  o.UpdatedAt.UnixMilli(),
		Version:    o.Version,
	}
}

func (d offerAggregateDocument) toAggregate() *domaintrade.Offer {
	return &domaintrade.Offer{
		ID:         domaintrade.OfferID(d.ID),
		AdID:       domaintrade.AdID(d.AdID),
		ProposerID: d.ProposerID,
		ImageURL:   d.ImageURL,
		Status:     domaintrade.OfferStatus(d.Status),
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}
