package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragchat/internal/model"
)

type FAQRepository struct {
	db *gorm.DB
}

func NewFAQRepository(db *gorm.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// UpsertByQuestion inserts new questions and refreshes the answer of known
// ones. It returns how many rows were written.
func (r *FAQRepository) UpsertByQuestion(entries []model.FAQEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	written := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			var existing model.FAQEntry
			err := tx.Where("question = ?", e.Question).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				entry := model.FAQEntry{Question: e.Question, Answer: e.Answer}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				written++
			case err != nil:
				return err
			case existing.Answer != e.Answer:
				if err := tx.Model(&existing).Update("answer", e.Answer).Error; err != nil {
					return err
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("upsert faq entries failed: %w", err)
	}
	return written, nil
}

// ListAfter pages by primary key so large tables are read without OFFSET scans.
func (r *FAQRepository) ListAfter(afterID uint, limit int) ([]model.FAQEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	var entries []model.FAQEntry
	if err := r.db.Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list faq entries failed: %w", err)
	}
	return entries, nil
}

func (r *FAQRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.FAQEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count faq entries failed: %w", err)
	}
	return n, nil
}
