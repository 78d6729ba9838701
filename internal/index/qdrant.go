// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// Qdrant defaults.
const (
	DefaultQdrantAddr       = "localhost:6334"
	DefaultQdrantCollection = "knowledge_base"

	payloadText = "text"
	scrollPage  = 256
)

// QdrantIndex stores fragments as points in a Qdrant collection. The point
// payload carries the text and every metadata key as string values.
type QdrantIndex struct {
	conn        *grpc.ClientConn
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	collection  string
	embedder    embedding.Embedder

	mu    sync.Mutex
	ready bool
}

// NewQdrantIndex dials the Qdrant gRPC endpoint in cfg. The collection is
// created on first write once the vector size is known.
func NewQdrantIndex(ctx context.Context, cfg types.QdrantConfig, emb embedding.Embedder) (*QdrantIndex, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultQdrantAddr
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, retrievalError("connecting to qdrant at "+addr, err)
	}
	q, err := newQdrantIndex(ctx, conn, cfg.Collection, emb)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug("connected to qdrant at %s (collection %s)", addr, q.collection)
	return q, nil
}

func newQdrantIndex(ctx context.Context, conn *grpc.ClientConn, collection string, emb embedding.Embedder) (*QdrantIndex, error) {
	if collection == "" {
		collection = DefaultQdrantCollection
	}
	q := &QdrantIndex{
		conn:        conn,
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		collection:  collection,
		embedder:    emb,
	}
	exists, err := q.collectionExists(ctx)
	if err != nil {
		return nil, retrievalError("listing qdrant collections", err)
	}
	q.ready = exists
	return q, nil
}

// Close releases the gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

func (q *QdrantIndex) collectionExists(ctx context.Context) (bool, error) {
	resp, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return false, err
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == q.collection {
			return true, nil
		}
	}
	return false, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, size int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ready {
		return nil
	}
	_, err := q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(size),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", q.collection, err)
	}
	logger.Info("created qdrant collection %s (%d dims)", q.collection, size)
	q.ready = true
	return nil
}

func (q *QdrantIndex) isReady() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ready
}

// AddVector implements Index.
func (q *QdrantIndex) AddVector(ctx context.Context, id, text string, meta types.Metadata) error {
	vec, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return retrievalError("embedding fragment", err)
	}
	if err := q.ensureCollection(ctx, len(vec)); err != nil {
		return retrievalError("preparing collection", err)
	}

	payload := map[string]*qdrant.Value{
		payloadText: stringValue(text),
	}
	for k, v := range meta {
		payload[k] = stringValue(v)
	}
	wait := true
	_, err = q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vec}},
			},
			Payload: payload,
		}},
	})
	if err != nil {
		return retrievalError("upserting point "+id, err)
	}
	return nil
}

// Search implements Index.
func (q *QdrantIndex) Search(ctx context.Context, query string, topics []string, limit int) ([]string, error) {
	if len(topics) == 0 || limit <= 0 || !q.isReady() {
		return []string{}, nil
	}
	qvec, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, retrievalError("embedding query", err)
	}

	resp, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.collection,
		Vector:         qvec,
		Filter:         topicFilter(topics),
		Limit:          uint64(limit),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Include{
				Include: &qdrant.PayloadIncludeSelector{Fields: []string{payloadText}},
			},
		},
	})
	if err != nil {
		return nil, retrievalError("searching qdrant", err)
	}

	out := make([]string, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		out = append(out, p.GetPayload()[payloadText].GetStringValue())
	}
	return out, nil
}

// ListDistinctValues implements Index.
func (q *QdrantIndex) ListDistinctValues(ctx context.Context, key string) ([]string, error) {
	seen := make(map[string]struct{})
	err := q.scroll(ctx, func(p *qdrant.RetrievedPoint) {
		v, ok := p.GetPayload()[key]
		if !ok {
			return
		}
		s, ok := v.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			logger.Debug("skipping point %s: %s is not a string", p.GetId().GetUuid(), key)
			return
		}
		seen[s.StringValue] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

// Fragments implements Index.
func (q *QdrantIndex) Fragments(ctx context.Context) ([]types.Fragment, error) {
	var out []types.Fragment
	err := q.scroll(ctx, func(p *qdrant.RetrievedPoint) {
		payload := p.GetPayload()
		out = append(out, types.Fragment{
			ID:     p.GetId().GetUuid(),
			Text:   payload[payloadText].GetStringValue(),
			Topic:  payload[types.MetaTopic].GetStringValue(),
			Source: payload[types.MetaSource].GetStringValue(),
		})
	})
	return out, err
}

// scroll visits every point in the collection, page by page.
func (q *QdrantIndex) scroll(ctx context.Context, visit func(*qdrant.RetrievedPoint)) error {
	if !q.isReady() {
		return nil
	}
	limit := uint32(scrollPage)
	var offset *qdrant.PointId
	for {
		resp, err := q.points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload: &qdrant.WithPayloadSelector{
				SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
			},
		})
		if err != nil {
			return retrievalError("scrolling qdrant", err)
		}
		for _, p := range resp.GetResult() {
			visit(p)
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return nil
		}
	}
}

func topicFilter(topics []string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: types.MetaTopic,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keywords{
							Keywords: &qdrant.RepeatedStrings{Strings: topics},
						},
					},
				},
			},
		}},
	}
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}
