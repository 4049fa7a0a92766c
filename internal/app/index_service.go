package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"ragchat/internal/model"
	"ragchat/internal/vectorindex"
)

const (
	embeddingBatchSize = 10 // most embedding APIs cap the batch size
	sourcePageSize     = 200
)

// pointNamespace seeds the UUIDv5 ids so re-indexing overwrites instead of duplicating.
var pointNamespace = uuid.MustParse("3f0c6a52-6e0e-4d8e-9a55-1d3f1b9c2a7e")

type FAQSource interface {
	ListAfter(afterID uint, limit int) ([]model.FAQEntry, error)
	UpsertByQuestion(entries []model.FAQEntry) (int, error)
}

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type PointWriter interface {
	EnsureCollection(ctx context.Context, dim int) error
	Upsert(ctx context.Context, points []vectorindex.Point) error
}

type IndexService struct {
	source   FAQSource
	embedder BatchEmbedder
	writer   PointWriter
}

type IndexResult struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

func NewIndexService(source FAQSource, embedder BatchEmbedder, writer PointWriter) *IndexService {
	return &IndexService{
		source:   source,
		embedder: embedder,
		writer:   writer,
	}
}

// PointID is stable for a given FAQ entry.
func PointID(entryID uint) string {
	return uuid.NewSHA1(pointNamespace, []byte("faq:"+strconv.FormatUint(uint64(entryID), 10))).String()
}

// Reindex walks the whole FAQ source and upserts every usable entry.
func (s *IndexService) Reindex(ctx context.Context) (*IndexResult, error) {
	result := &IndexResult{}
	collectionReady := false

	var afterID uint
	for {
		page, err := s.source.ListAfter(afterID, sourcePageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		afterID = page[len(page)-1].ID

		usable := make([]model.FAQEntry, 0, len(page))
		for _, e := range page {
			if strings.TrimSpace(e.Question) == "" && strings.TrimSpace(e.Answer) == "" {
				result.Skipped++
				continue
			}
			usable = append(usable, e)
		}

		for i := 0; i < len(usable); i += embeddingBatchSize {
			end := i + embeddingBatchSize
			if end > len(usable) {
				end = len(usable)
			}
			batch := usable[i:end]

			texts := make([]string, len(batch))
			for j, e := range batch {
				texts[j] = formatEntry(e.Question, e.Answer)
			}
			vectors, err := s.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return nil, fmt.Errorf("embed faq batch failed: %w", err)
			}
			if len(vectors) != len(batch) {
				return nil, errors.New("embedding count mismatch")
			}

			if !collectionReady {
				if err := s.writer.EnsureCollection(ctx, len(vectors[0])); err != nil {
					return nil, err
				}
				collectionReady = true
			}

			points := make([]vectorindex.Point, len(batch))
			for j, e := range batch {
				points[j] = vectorindex.Point{
					ID:       PointID(e.ID),
					Vector:   vectors[j],
					Question: e.Question,
					Answer:   e.Answer,
				}
			}
			if err := s.writer.Upsert(ctx, points); err != nil {
				return nil, err
			}
			result.Indexed += len(points)
		}

		if len(page) < sourcePageSize {
			break
		}
	}
	return result, nil
}

type seedFile struct {
	Entries []struct {
		Question string `toml:"question"`
		Answer   string `toml:"answer"`
	} `toml:"entry"`
}

// ImportSeed loads [[entry]] question/answer pairs from a TOML file into the
// source. Re-importing the same file writes nothing.
func (s *IndexService) ImportSeed(path string) (int, error) {
	var seed seedFile
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return 0, fmt.Errorf("decode seed file failed: %w", err)
	}

	entries := make([]model.FAQEntry, 0, len(seed.Entries))
	for _, e := range seed.Entries {
		q := strings.TrimSpace(e.Question)
		a := strings.TrimSpace(e.Answer)
		if q == "" || a == "" {
			continue
		}
		entries = append(entries, model.FAQEntry{Question: q, Answer: a})
	}
	return s.source.UpsertByQuestion(entries)
}
