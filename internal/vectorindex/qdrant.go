// Package vectorindex wraps a Qdrant collection holding question/answer pairs.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/metadata"

	"ragchat/internal/model"
)

const (
	payloadQuestion = "question"
	payloadAnswer   = "answer"
)

var (
	ErrNotConfigured      = errors.New("vector index is not configured")
	ErrCollectionNotFound = errors.New("vector index collection not found")
)

// Point is a vector plus the Q/A payload stored with it.
type Point struct {
	ID       string
	Vector   []float32
	Question string
	Answer   string
}

type Index struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
	apiKey      string
}

// New requires both the access credential and the collection name.
func New(points qdrant.PointsClient, collections qdrant.CollectionsClient, collection, apiKey string) (*Index, error) {
	collection = strings.TrimSpace(collection)
	apiKey = strings.TrimSpace(apiKey)

	var missing []string
	if apiKey == "" {
		missing = append(missing, "api key")
	}
	if collection == "" {
		missing = append(missing, "index name")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, " and "))
	}

	return &Index{
		points:      points,
		collections: collections,
		collection:  collection,
		apiKey:      apiKey,
	}, nil
}

func (i *Index) Name() string {
	return i.collection
}

// Search returns up to topK entries ordered as Qdrant ranked them.
func (i *Index) Search(ctx context.Context, vector []float32, topK int) ([]model.RetrievedEntry, error) {
	if topK <= 0 {
		topK = 5
	}
	resp, err := i.points.Search(i.withAuth(ctx), &qdrant.SearchPoints{
		CollectionName: i.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	entries := make([]model.RetrievedEntry, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		entries = append(entries, model.NewRetrievedEntry(metadataFromPayload(point.GetPayload()), point.GetScore()))
	}
	return entries, nil
}

// Ping checks that the server answers and the collection exists.
func (i *Index) Ping(ctx context.Context) error {
	exists, err := i.collectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, i.collection)
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance when it is missing.
func (i *Index) EnsureCollection(ctx context.Context, dim int) error {
	exists, err := i.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if dim <= 0 {
		return fmt.Errorf("invalid vector size %d", dim)
	}

	_, err = i.collections.Create(i.withAuth(ctx), &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection failed: %w", err)
	}
	return nil
}

func (i *Index) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		structs = append(structs, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: p.ID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: p.Vector},
				},
			},
			Payload: map[string]*qdrant.Value{
				payloadQuestion: stringValue(p.Question),
				payloadAnswer:   stringValue(p.Answer),
			},
		})
	}

	wait := true
	_, err := i.points.Upsert(i.withAuth(ctx), &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("upsert points failed: %w", err)
	}
	return nil
}

func (i *Index) collectionExists(ctx context.Context) (bool, error) {
	resp, err := i.collections.List(i.withAuth(ctx), &qdrant.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("list collections failed: %w", err)
	}
	for _, col := range resp.GetCollections() {
		if col.GetName() == i.collection {
			return true, nil
		}
	}
	return false, nil
}

func (i *Index) withAuth(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "api-key", i.apiKey)
}

// metadataFromPayload keeps only string-typed question/answer fields; anything
// else is treated as absent.
func metadataFromPayload(payload map[string]*qdrant.Value) model.EntryMetadata {
	var meta model.EntryMetadata
	if s, ok := stringField(payload, payloadQuestion); ok {
		meta.Question = &s
	}
	if s, ok := stringField(payload, payloadAnswer); ok {
		meta.Answer = &s
	}
	return meta
}

func stringField(payload map[string]*qdrant.Value, key string) (string, bool) {
	v, ok := payload[key]
	if !ok || v == nil {
		return "", false
	}
	kind, ok := v.GetKind().(*qdrant.Value_StringValue)
	if !ok {
		return "", false
	}
	return kind.StringValue, true
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}
