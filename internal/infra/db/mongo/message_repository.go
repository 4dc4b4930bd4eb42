package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "swapmeet/internal/domain/chat"
)

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection("agg_message")}
}

func (r *MessageRepository) Append(ctx context.Context, m *domainchat.Message) error {
	_, err := r.col.InsertOne(ctx, newMessageDocument(m))
	return err
}

func (r *MessageRepository) ByID(ctx context.Context, id domainchat.MessageID) (*domainchat.Message, error) {
	var doc messageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrMessageNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *MessageRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domainchat.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": participantID},
		bson.M{"receiver_id": participantID},
	}}
	return r.list(ctx, filter)
}

func (r *MessageRepository) ListByConversation(ctx context.Context, key domainchat.ConversationKey) ([]*domainchat.Message, error) {
	return r.list(ctx, bson.M{"conversation": key.String()})
}

func (r *MessageRepository) list(ctx context.Context, filter bson.M) ([]*domainchat.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*domainchat.Message, 0)
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *MessageRepository) LatestTradeOffer(ctx context.Context, offerID string) (*domainchat.Message, error) {
	filter := bson.M{"kind": string(domainchat.KindTradeOffer), "offer.offer_id": offerID}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc messageDocument
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrMessageNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *MessageRepository) AmendOutcome(ctx context.Context, offerID string, outcome domainchat.Outcome) error {
	latest, err := r.LatestTradeOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, domainchat.ErrMessageNotFound) {
			return nil
		}
		return err
	}
	if !latest.TagOutcome(outcome) {
		return nil
	}
	update := bson.M{"$set": bson.M{
		"body":          latest.Body,
		"offer.outcome": string(outcome),
	}}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": latest.ID, "offer.outcome": ""}, update)
	return err
}

func (r *MessageRepository) MarkRead(ctx context.Context, ids []domainchat.MessageID, readerID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":         bson.M{"$in": ids},
		"receiver_id": readerID,
		"read":        false,
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

type messageDocument struct {
	ID           string        `bson:"_id"`
	Conversation string        `bson:"conversation"`
	SenderID     string        `bson:"sender_id"`
	ReceiverID   string        `bson:"receiver_id"`
	Kind         string        `bson:"kind"`
	Body         string        `bson:"body"`
	TradeID      string        `bson:"trade_id"`
	Offer        offerDocument `bson:"offer"`
	Read         bool          `bson:"read"`
	CreatedAt    int64         `bson:"created_at"`
}

type offerDocument struct {
	OfferID  string `bson:"offer_id"`
	ImageURL string `bson:"image_url"`
	Outcome  string `bson:"outcome"`
}

func newMessageDocument(m *domainchat.Message) messageDocument {
	return messageDocument{
		ID:           string(m.ID),
		Conversation: m.Key().String(),
		SenderID:     m.SenderID,
		ReceiverID:   m.ReceiverID,
		Kind:         string(m.Kind),
		Body:         m.Body,
		TradeID:      m.TradeID,
		Offer: offerDocument{
			OfferID:  m.Offer.OfferID,
			ImageURL: m.Offer.ImageURL,
			Outcome:  string(m.Offer.Outcome),
		},
		Read:      m.Read,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toAggregate() *domainchat.Message {
	return &domainchat.Message{
		ID:         domainchat.MessageID(d.ID),
		SenderID:   d.SenderID,
		ReceiverID: d.ReceiverID,
		Kind:       domainchat.MessageKind(d.Kind),
		Body:       d.Body,
		TradeID:    d.TradeID,
		Offer: domainchat.OfferPayload{
			OfferID:  d.Offer.OfferID,
			ImageURL: d.Offer.ImageURL,
			Outcome:  domainchat.Outcome(d.Offer.Outcome),
		},
		Read:      d.Read,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
