// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"net"
	"sort"
	"sync"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// fakeQdrant holds the state behind the fake Qdrant services.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]uint64
	points      []*qdrant.PointStruct
}

// fakeCollections serves the collection calls the index uses.
type fakeCollections struct {
	qdrant.UnimplementedCollectionsServer
	*fakeQdrant
}

// fakePoints serves the point calls the index uses.
type fakePoints struct {
	qdrant.UnimplementedPointsServer
	*fakeQdrant
}

func (f fakeCollections) List(context.Context, *qdrant.ListCollectionsRequest) (*qdrant.ListCollectionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &qdrant.ListCollectionsResponse{}
	for name := range f.collections {
		resp.Collections = append(resp.Collections, &qdrant.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (f fakeCollections) Create(_ context.Context, req *qdrant.CreateCollection) (*qdrant.CollectionOperationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[req.GetCollectionName()] = req.GetVectorsConfig().GetParams().GetSize()
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func (f fakePoints) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.PointsOperationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, req.GetPoints()...)
	return &qdrant.PointsOperationResponse{}, nil
}

func (f fakePoints) Search(_ context.Context, req *qdrant.SearchPoints) (*qdrant.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := map[string]bool{}
	for _, c := range req.GetFilter().GetMust() {
		for _, s := range c.GetField().GetMatch().GetKeywords().GetStrings() {
			allowed[s] = true
		}
	}
	var hits []*qdrant.ScoredPoint
	for _, p := range f.points {
		if !allowed[p.GetPayload()[types.MetaTopic].GetStringValue()] {
			continue
		}
		score := embedding.Cosine(req.GetVector(), p.GetVectors().GetVector().GetData())
		hits = append(hits, &qdrant.ScoredPoint{Id: p.GetId(), Payload: p.GetPayload(), Score: float32(score)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if uint64(len(hits)) > req.GetLimit() {
		hits = hits[:req.GetLimit()]
	}
	return &qdrant.SearchResponse{Result: hits}, nil
}

func (f fakePoints) Scroll(_ context.Context, req *qdrant.ScrollPoints) (*qdrant.ScrollResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if off := req.GetOffset(); off != nil {
		for i, p := range f.points {
			if p.GetId().GetUuid() == off.GetUuid() {
				start = i
			}
		}
	}
	end := start + int(req.GetLimit())
	resp := &qdrant.ScrollResponse{}
	if end < len(f.points) {
		resp.NextPageOffset = f.points[end].GetId()
	} else {
		end = len(f.points)
	}
	for _, p := range f.points[start:end] {
		resp.Result = append(resp.Result, &qdrant.RetrievedPoint{Id: p.GetId(), Payload: p.GetPayload()})
	}
	return resp, nil
}

func testQdrant(t *testing.T) (*QdrantIndex, *fakeQdrant) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	fake := &fakeQdrant{collections: map[string]uint64{}}
	srv := grpc.NewServer()
	qdrant.RegisterCollectionsServer(srv, fakeCollections{fakeQdrant: fake})
	qdrant.RegisterPointsServer(srv, fakePoints{fakeQdrant: fake})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	idx, err := newQdrantIndex(context.Background(), conn, "", embedding.NewHashEmbedder(256))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx, fake
}

func TestQdrantEmptyCollection(t *testing.T) {
	idx, _ := testQdrant(t)
	ctx := context.Background()

	got, err := idx.Search(ctx, "sky", []string{"Nature"}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	topics, err := idx.ListDistinctValues(ctx, types.MetaTopic)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestQdrantAddCreatesCollection(t *testing.T) {
	idx, fake := testQdrant(t)
	require.NoError(t, idx.AddVector(context.Background(), "6f1c1d2e-0000-4000-8000-000000000001", "The sky is blue", meta("Nature")))

	assert.Equal(t, uint64(256), fake.collections[DefaultQdrantCollection])
	require.Len(t, fake.points, 1)
	payload := fake.points[0].GetPayload()
	assert.Equal(t, "The sky is blue", payload["text"].GetStringValue())
	assert.Equal(t, "Nature", payload["topic"].GetStringValue())
	assert.Equal(t, "manual", payload["source"].GetStringValue())
}

func TestQdrantSearchAndScan(t *testing.T) {
	idx, _ := testQdrant(t)
	ctx := context.Background()
	require.NoError(t, idx.AddVector(ctx, "00000000-0000-4000-8000-000000000001", "Grass is green", meta("Nature")))
	require.NoError(t, idx.AddVector(ctx, "00000000-0000-4000-8000-000000000002", "The sky is blue", meta("Nature")))
	require.NoError(t, idx.AddVector(ctx, "00000000-0000-4000-8000-000000000003", "Recursion calls itself", meta("Programming")))

	got, err := idx.Search(ctx, "what color is the sky", []string{"Nature"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"The sky is blue"}, got)

	got, err = idx.Search(ctx, "sky", []string{"Programming"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Recursion calls itself"}, got)

	topics, err := idx.ListDistinctValues(ctx, types.MetaTopic)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nature", "Programming"}, topics)

	frags, err := idx.Fragments(ctx)
	require.NoError(t, err)
	require.Len(t, frags, 3)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", frags[0].ID)
	assert.Equal(t, "Grass is green", frags[0].Text)
}

func TestQdrantScrollPaginates(t *testing.T) {
	idx, fake := testQdrant(t)
	ctx := context.Background()
	require.NoError(t, idx.AddVector(ctx, "00000000-0000-4000-8000-000000000000", "seed", meta("T0")))
	fake.mu.Lock()
	for i := 1; i <= scrollPage+10; i++ {
		fake.points = append(fake.points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: string(rune('a'+i%26)) + "-" + string(rune('A'+i/26))}},
			Payload: map[string]*qdrant.Value{"topic": stringValue("T1")},
		})
	}
	fake.mu.Unlock()

	frags, err := idx.Fragments(ctx)
	require.NoError(t, err)
	assert.Len(t, frags, scrollPage+11)
}
