package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverTaken(ctx context.Context, s string) (bool, error) {
	return false, nil
}

func takenSet(taken ...string) SlugExistsFunc {
	set := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		set[s] = struct{}{}
	}
	return func(ctx context.Context, s string) (bool, error) {
		_, ok := set[s]
		return ok, nil
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain latin", "Laptops", "laptops"},
		{"cyrillic", "Ноутбуки", "noutbuki"},
		{"mixed with punctuation", `Laptop "Pro" 15`, "laptop-pro-15"},
		{"whitespace collapse", "  Gaming   Laptops  ", "gaming-laptops"},
		{"leading trailing hyphens", "-Promo-", "promo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSluggerBareSlug(t *testing.T) {
	s := NewSlugger(neverTaken)

	got, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)
	assert.Equal(t, "gaming-laptops", got)
}

func TestSluggerParentPrefix(t *testing.T) {
	s := NewSlugger(neverTaken)

	got, err := s.Unique(context.Background(), "Gaming Laptops", "laptops")
	require.NoError(t, err)
	assert.Equal(t, "laptops-gaming-laptops", got)
}

func TestSluggerDiscriminatorFallback(t *testing.T) {
	s := NewSlugger(takenSet("gaming-laptops"))

	got, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)
	assert.Equal(t, "gaming-laptops-gl", got)
}

func TestSluggerNumericFallback(t *testing.T) {
	s := NewSlugger(takenSet("gaming-laptops", "gaming-laptops-gl", "gaming-laptops-2"))

	got, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)
	assert.Equal(t, "gaming-laptops-3", got)
}

func TestSluggerSingleWordSkipsDiscriminator(t *testing.T) {
	s := NewSlugger(takenSet("laptops"))

	got, err := s.Unique(context.Background(), "Laptops", "")
	require.NoError(t, err)
	assert.Equal(t, "laptops-2", got)
}

func TestSluggerRunLocalReservation(t *testing.T) {
	// storage reports everything free, but the same name twice in one run
	// must still yield distinct slugs
	s := NewSlugger(neverTaken)

	first, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)
	second, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)
	third, err := s.Unique(context.Background(), "Gaming Laptops", "")
	require.NoError(t, err)

	assert.Equal(t, "gaming-laptops", first)
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)
	assert.NotEqual(t, first, third)
}

func TestSluggerEmptyName(t *testing.T) {
	s := NewSlugger(neverTaken)

	got, err := s.Unique(context.Background(), "???", "")
	require.NoError(t, err)
	assert.Equal(t, "item", got)
}
