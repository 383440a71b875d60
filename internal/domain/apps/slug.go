package apps

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// MakeSlug generates a URL-safe slug from an app name.
// Example: "My SaaS App" -> "my-saas-app"
func MakeSlug(name string) string {
	s := slug.Make(strings.TrimSpace(name))
	if s == "" {
		s = "app"
	}
	return s
}

// EnsureUniqueSlug returns base if it is free, otherwise base-2, base-3, ...
// Uniqueness is ultimately enforced by the index on apps.slug; this keeps the
// common path free of insert conflicts.
func EnsureUniqueSlug(db *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(&App{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
