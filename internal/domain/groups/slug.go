package groups

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe base slug from a group name.
// Example: "Indie Makers Club" -> "indie-makers-club"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "group"
	}
	return base
}

// UniqueSlug returns the base slug, suffixed with a counter when taken.
func UniqueSlug(db *gorm.DB, name string) (string, error) {
	base := MakeSlug(name)
	slug := base

	for i := 2; ; i++ {
		var count int64
		if err := db.Model(&Group{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
