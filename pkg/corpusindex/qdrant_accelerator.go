package corpusindex

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantAccelerator implements VectorAccelerator against a Qdrant
// collection, grounded on Tangerg/lynx's ai/providers/vectorstores/qdrant
// store.go usage of qdrant.Client.Upsert/Query. It is optional: when a
// corpus index is constructed without one, Search falls back to the
// local brute-force cosine scan exclusively.
type QdrantAccelerator struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantAccelerator connects to a Qdrant instance on host addr at the
// fixed gRPC port 6334 (addr is a host name, not host:port) and targets
// collection, creating it with the given vector dimension if
// it does not already exist.
func NewQdrantAccelerator(ctx context.Context, addr string, collection string, dimension uint64) (*QdrantAccelerator, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: addr, Port: 6334})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s: %w", addr, err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("check qdrant collection %s: %w", collection, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dimension,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("create qdrant collection %s: %w", collection, err)
		}
	}

	return &QdrantAccelerator{client: client, collection: collection}, nil
}

// Upsert implements VectorAccelerator.
func (a *QdrantAccelerator) Upsert(chunkID string, vector []float32) error {
	wait := true
	_, err := a.client.Upsert(context.Background(), &qdrant.UpsertPoints{
		CollectionName: a.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(chunkID),
				Vectors: qdrant.NewVectors(vector...),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert for %s: %w", chunkID, err)
	}
	return nil
}

// Search implements VectorAccelerator. ok is false whenever the query
// fails, signaling the caller to fall back to the local scan.
func (a *QdrantAccelerator) Search(vector []float32, topK int) (chunkIDs []string, ok bool) {
	limit := uint64(topK)
	points, err := a.client.Query(context.Background(), &qdrant.QueryPoints{
		CollectionName: a.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, false
	}

	ids := make([]string, 0, len(points))
	for _, p := range points {
		if id := p.GetId(); id != nil {
			ids = append(ids, id.GetUuid())
		}
	}
	return ids, true
}

// Close releases the underlying gRPC connection.
func (a *QdrantAccelerator) Close() error {
	return a.client.Close()
}
