package persistence

import (
	"github.com/procura/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate returns a scope applying the normalized offset and limit
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	page, pageSize = shared.NormalizePage(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// likePattern escapes LIKE wildcards in a user keyword and wraps it in %
func likePattern(keyword string) string {
	escaped := make([]rune, 0, len(keyword)+2)
	for _, r := range keyword {
		if r == '%' || r == '_' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return "%" + string(escaped) + "%"
}
