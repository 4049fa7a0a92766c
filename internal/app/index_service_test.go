package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ragchat/internal/model"
	"ragchat/internal/vectorindex"
)

type memorySource struct {
	entries []model.FAQEntry
}

func (m *memorySource) ListAfter(afterID uint, limit int) ([]model.FAQEntry, error) {
	var out []model.FAQEntry
	for _, e := range m.entries {
		if e.ID > afterID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memorySource) UpsertByQuestion(entries []model.FAQEntry) (int, error) {
	written := 0
	for _, e := range entries {
		found := false
		for i := range m.entries {
			if m.entries[i].Question == e.Question {
				found = true
				if m.entries[i].Answer != e.Answer {
					m.entries[i].Answer = e.Answer
					written++
				}
			}
		}
		if !found {
			e.ID = uint(len(m.entries) + 1)
			m.entries = append(m.entries, e)
			written++
		}
	}
	return written, nil
}

type recordingEmbedder struct {
	batchSizes []int
}

func (r *recordingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	r.batchSizes = append(r.batchSizes, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

type recordingWriter struct {
	dim    int
	points []vectorindex.Point
}

func (r *recordingWriter) EnsureCollection(ctx context.Context, dim int) error {
	r.dim = dim
	return nil
}

func (r *recordingWriter) Upsert(ctx context.Context, points []vectorindex.Point) error {
	r.points = append(r.points, points...)
	return nil
}

func TestIndexService_ReindexBatchesOfTen(t *testing.T) {
	src := &memorySource{}
	for i := 1; i <= 23; i++ {
		src.entries = append(src.entries, model.FAQEntry{ID: uint(i), Question: fmt.Sprintf("q%d", i), Answer: "a"})
	}
	src.entries = append(src.entries, model.FAQEntry{ID: 24})
	emb := &recordingEmbedder{}
	writer := &recordingWriter{}
	svc := NewIndexService(src, emb, writer)

	result, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if result.Indexed != 23 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if fmt.Sprint(emb.batchSizes) != "[10 10 3]" {
		t.Errorf("unexpected batch sizes: %v", emb.batchSizes)
	}
	if writer.dim != 4 {
		t.Errorf("collection should be sized from the first vector, got %d", writer.dim)
	}
	if writer.points[0].ID != PointID(1) || writer.points[0].Question != "q1" {
		t.Errorf("unexpected first point: %+v", writer.points[0])
	}
}

func TestIndexService_EmptySource(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewIndexService(&memorySource{}, &recordingEmbedder{}, writer)

	result, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if result.Indexed != 0 || len(writer.points) != 0 {
		t.Errorf("nothing should be indexed: %+v", result)
	}
}

func TestPointID_Deterministic(t *testing.T) {
	if PointID(7) != PointID(7) {
		t.Error("same entry must map to the same id")
	}
	if PointID(7) == PointID(8) {
		t.Error("different entries must not collide")
	}
}

func TestIndexService_ImportSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	content := `
[[entry]]
question = "What is Infernet?"
answer = "A node runtime."

[[entry]]
question = "   "
answer = "ignored"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	src := &memorySource{}
	svc := NewIndexService(src, &recordingEmbedder{}, &recordingWriter{})

	n, err := svc.ImportSeed(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if n != 1 || len(src.entries) != 1 || src.entries[0].Question != "What is Infernet?" {
		t.Errorf("unexpected import: n=%d entries=%+v", n, src.entries)
	}

	n, err = svc.ImportSeed(path)
	if err != nil || n != 0 {
		t.Errorf("re-import should write nothing: n=%d err=%v", n, err)
	}
}
