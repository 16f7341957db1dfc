package services

import (
	"math/rand"
	"regexp"
	"strings"
)

var (
	slugNonWord    = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
	slugEdges      = regexp.MustCompile(`^-+|-+$`)
)

const slugSuffixLen = 6

const base36 = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSlug turns a post title into a URL-safe slug: lowercase, strip
// non-word characters, collapse whitespace/underscores/hyphens into single
// hyphens, trim edge hyphens, then append a random base36 suffix so repeated
// titles still get distinct slugs. The database unique index catches the
// residual collisions.
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugNonWord.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugEdges.ReplaceAllString(s, "")

	return s + "-" + randomSuffix(slugSuffixLen)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
