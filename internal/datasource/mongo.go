// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// MongoTimeout bounds server selection for a fetch.
var MongoTimeout = 10 * time.Second

func fetchMongo(ctx context.Context, c types.ConnectionMongo, q types.QuerySpec) (string, error) {
	if strings.TrimSpace(c.URI) == "" {
		return "", fmt.Errorf("mongo connection: empty uri: %w", types.ErrValidation)
	}
	database := q.Database
	if database == "" {
		database = c.DefaultDatabase
	}
	if database == "" || q.Collection == "" {
		return "", fmt.Errorf("mongo query: missing database or collection name: %w", types.ErrValidation)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	opts := options.Client().ApplyURI(c.URI).SetServerSelectionTimeout(MongoTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return "", sourceError("mongo", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Debug("mongo disconnect: %v", err)
		}
	}()

	filter := parseFilter(q.Filter)
	logger.Debug("mongo find on %s.%s filter=%v limit=%d", database, q.Collection, filter, limit)

	coll := client.Database(database).Collection(q.Collection)
	cursor, err := coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return "", sourceError("mongo", err)
	}
	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return "", sourceError("mongo", err)
	}
	if len(docs) == 0 {
		return NoResults, nil
	}

	records, err := encodeDocuments(docs)
	if err != nil {
		return "", sourceError("mongo", err)
	}
	return indentRecords(records)
}

// parseFilter decodes an extended JSON filter. Blank or unparsable input
// matches every document; the latter is logged as a warning.
func parseFilter(raw string) bson.D {
	if strings.TrimSpace(raw) == "" {
		return bson.D{}
	}
	var filter bson.D
	if err := bson.UnmarshalExtJSON([]byte(raw), false, &filter); err != nil {
		logger.Warn("ignoring invalid mongo filter %q: %v", raw, err)
		return bson.D{}
	}
	return filter
}

// encodeDocuments renders documents as relaxed extended JSON, keeping
// field order.
func encodeDocuments(docs []bson.D) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, len(docs))
	for i, doc := range docs {
		b, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return nil, err
		}
		records[i] = b
	}
	return records, nil
}
