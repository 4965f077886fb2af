package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"headline-search/pkg/domain"
)

// ArchiveClient writes headlines into a MongoDB archive collection. The
// archive is a secondary sink fed by the replication pass, not a serving
// store: purged rows survive here for later analysis.
type ArchiveClient struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// archiveDoc is the persisted shape of an archived headline.
type archiveDoc struct {
	HeadlineID int64             `bson:"headline_id"`
	URL        string            `bson:"url"` // canonical, no scheme
	Secure     bool              `bson:"secure"`
	Source     string            `bson:"source"`
	Metadata   map[string]string `bson:"metadata"`
	Discussion string            `bson:"discussion,omitempty"`
	Labels     []string          `bson:"labels,omitempty"`
	AddedAt    time.Time         `bson:"added_at"`
	Content    string            `bson:"content,omitempty"`
	Summary    string            `bson:"summary,omitempty"`
	ArchivedAt time.Time         `bson:"archived_at"`
}

// NewArchiveClient connects to MongoDB and selects the archive collection.
func NewArchiveClient(ctx context.Context, uri, database, collection string) (*ArchiveClient, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &ArchiveClient{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects from MongoDB.
func (c *ArchiveClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// SaveHeadline upserts a headline into the archive, keyed by canonical URL.
func (c *ArchiveClient) SaveHeadline(ctx context.Context, h *domain.Headline) error {
	doc := archiveDoc{
		HeadlineID: h.ID,
		URL:        h.URL.Canonical,
		Secure:     h.URL.Secure,
		Source:     h.Source,
		Metadata:   h.Metadata,
		Discussion: h.Discussion,
		Labels:     h.Labels,
		AddedAt:    h.AddedAt,
		Content:    h.Content,
		Summary:    h.Summary,
		ArchivedAt: time.Now(),
	}

	filter := bson.M{"url": doc.URL}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := c.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("archive headline %s: %w", doc.URL, err)
	}
	return nil
}

// ArchivedURLs returns the set of canonical URLs already archived, so a
// replication pass can skip them.
func (c *ArchiveClient) ArchivedURLs(ctx context.Context) (map[string]bool, error) {
	cursor, err := c.collection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"url": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("query archived urls: %w", err)
	}
	defer cursor.Close(ctx)

	urls := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			URL string `bson:"url"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		if doc.URL != "" {
			urls[doc.URL] = true
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return urls, nil
}
