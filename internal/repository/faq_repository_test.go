package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"ragchat/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every new connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&model.FAQEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFAQRepository_ListAfterPages(t *testing.T) {
	repo := NewFAQRepository(newTestDB(t))
	entries := []model.FAQEntry{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	}
	if _, err := repo.UpsertByQuestion(entries); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, err := repo.ListAfter(0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 2 || first[0].Question != "q1" {
		t.Fatalf("unexpected first page: %+v", first)
	}

	rest, err := repo.ListAfter(first[1].ID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rest) != 1 || rest[0].Question != "q3" {
		t.Errorf("unexpected second page: %+v", rest)
	}

	n, err := repo.Count()
	if err != nil || n != 3 {
		t.Errorf("expected count 3, got %d (%v)", n, err)
	}
}

func TestFAQRepository_UpsertByQuestion(t *testing.T) {
	repo := NewFAQRepository(newTestDB(t))

	n, err := repo.UpsertByQuestion([]model.FAQEntry{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	})
	if err != nil || n != 2 {
		t.Fatalf("first upsert: n=%d err=%v", n, err)
	}

	n, err = repo.UpsertByQuestion([]model.FAQEntry{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "changed"},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if n != 1 {
		t.Errorf("only the changed answer should be written, got %d", n)
	}

	entries, err := repo.ListAfter(0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[1].Answer != "changed" {
		t.Errorf("unexpected rows: %+v", entries)
	}
}

func TestFAQRepository_UpsertEmpty(t *testing.T) {
	repo := NewFAQRepository(newTestDB(t))
	if n, err := repo.UpsertByQuestion(nil); err != nil || n != 0 {
		t.Errorf("empty upsert should be a no-op: n=%d err=%v", n, err)
	}
}
