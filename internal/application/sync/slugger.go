package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// SlugExistsFunc reports whether a slug is already taken in storage
type SlugExistsFunc func(ctx context.Context, s string) (bool, error)

// Slugger derives unique URL slugs from display names. Names are frequently
// Cyrillic; transliteration is handled by the slug library after an NFKD
// prepass that splits composed accents off source text pasted from vendor
// CMSes.
//
// Uniqueness is checked against storage plus a run-local reserved set, since
// slugs claimed earlier in the run may still sit in an unflushed write
// window.
type Slugger struct {
	exists   SlugExistsFunc
	reserved map[string]struct{}
}

// NewSlugger creates a slugger bound to one uniqueness scope
func NewSlugger(exists SlugExistsFunc) *Slugger {
	return &Slugger{
		exists:   exists,
		reserved: make(map[string]struct{}),
	}
}

// Slugify normalizes and transliterates a display name into slug form
func Slugify(name string) string {
	return slug.Make(norm.NFKD.String(name))
}

// Unique derives a free slug for the name. A non-empty parentSlug is
// prefixed before uniqueness checking (hierarchical categories). Collisions
// fall back to a discriminator built from the name's word initials, then to
// a numeric suffix.
func (s *Slugger) Unique(ctx context.Context, name, parentSlug string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "item"
	}
	if parentSlug != "" {
		base = parentSlug + "-" + base
	}

	ok, err := s.claim(ctx, base)
	if err != nil {
		return "", err
	}
	if ok {
		return base, nil
	}

	if d := discriminator(name); d != "" {
		candidate := base + "-" + d
		ok, err = s.claim(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		ok, err = s.claim(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}
}

func (s *Slugger) claim(ctx context.Context, candidate string) (bool, error) {
	if _, taken := s.reserved[candidate]; taken {
		return false, nil
	}
	taken, err := s.exists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", candidate, err)
	}
	if taken {
		return false, nil
	}
	s.reserved[candidate] = struct{}{}
	return true, nil
}

// discriminator joins the first letter of each slugified word, so
// "Gaming Laptops" yields "gl". Single-word names yield nothing useful and
// skip straight to the numeric suffix.
func discriminator(name string) string {
	parts := strings.Split(Slugify(name), "-")
	if len(parts) < 2 {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if p != "" {
			b.WriteByte(p[0])
		}
	}
	return b.String()
}
