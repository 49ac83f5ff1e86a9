package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// nextDocumentNumber produces the next sequential number for a document type,
// formatted as PREFIX-YYYYMMDD-NNNNN. The sequence resets daily. Callers that
// need uniqueness under concurrency must run inside a transaction; the unique
// index on the number column backstops any race.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string, now time.Time) (string, error) {
	dayPrefix := fmt.Sprintf("%s-%s-", prefix, now.Format("20060102"))

	var count int64
	if err := db.WithContext(ctx).
		Model(model).
		Where(column+" LIKE ?", dayPrefix+"%").
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to generate document number: %w", err)
	}

	return fmt.Sprintf("%s%05d", dayPrefix, count+1), nil
}

// applyPagination applies page-based offset and limit to the query
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}
