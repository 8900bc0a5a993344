package events

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const eventsCollection = "payment_events"

// MongoPublisher appends events to the payment_events collection.
type MongoPublisher struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoPublisher connects to uri and verifies the connection.
func NewMongoPublisher(ctx context.Context, uri, database string) (*MongoPublisher, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoPublisher{
		client: client,
		coll:   client.Database(database).Collection(eventsCollection),
		now:    time.Now,
	}, nil
}

// NewMongoPublisherFromCollection publishes into an existing collection.
func NewMongoPublisherFromCollection(coll *mongo.Collection) *MongoPublisher {
	return &MongoPublisher{coll: coll, now: time.Now}
}

func (p *MongoPublisher) Publish(ctx context.Context, eventType string, payment *models.Payment) error {
	e := NewEvent(eventType, payment, p.now())
	if _, err := p.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}
	return nil
}

// Close disconnects the client if the publisher owns it.
func (p *MongoPublisher) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Disconnect(ctx)
}
