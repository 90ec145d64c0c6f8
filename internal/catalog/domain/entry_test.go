package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPatch_Validate(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		want  error
	}{
		{"empty", Patch{}, ErrEmptyPatch},
		{"negative spaces", Patch{Capacity: ptr(-1)}, ErrInvalidPatch},
		{"spaces beyond int32", Patch{Capacity: ptr(math.MaxInt32 + 1)}, ErrInvalidPatch},
		{"negative price", Patch{Price: ptr(int64(-5))}, ErrInvalidPatch},
		{"blank subject", Patch{Subject: ptr("  ")}, ErrInvalidPatch},
		{"zero spaces", Patch{Capacity: ptr(0)}, nil},
		{"image only", Patch{Image: ptr("maths.png")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPatch_ApplyLeavesUnsetFields(t *testing.T) {
	e := NewEntry("Mathematics", "Port Louis", 1000, 5)
	require.True(t, ValidID(e.ID))

	Patch{Capacity: ptr(2), Image: ptr("maths.png")}.Apply(&e)

	assert.Equal(t, "Mathematics", e.Subject)
	assert.Equal(t, "Port Louis", e.Location)
	assert.Equal(t, int64(1000), e.Price)
	assert.Equal(t, 2, e.Capacity)
	assert.Equal(t, "maths.png", e.Image)
}

func TestQuery(t *testing.T) {
	entries := []Entry{
		{ID: "1", Subject: "Mathematics", Location: "Port Louis", Price: 1000, Capacity: 5},
		{ID: "2", Subject: "Art & Craft", Location: "Quatre Bornes", Price: 700, Capacity: 5},
		{ID: "3", Subject: "Robotics Club", Location: "Grand Baie", Price: 1500, Capacity: 3},
	}

	t.Run("unknown sort falls back to subject", func(t *testing.T) {
		q := NewQuery("", "colour", "")
		assert.Equal(t, SortSubject, q.Sort)
		assert.False(t, q.Desc)
	})

	t.Run("text search is case insensitive over subject and location", func(t *testing.T) {
		q := NewQuery("BORNES", "", "")
		assert.False(t, q.Matches(entries[0]))
		assert.True(t, q.Matches(entries[1]))
	})

	t.Run("numeric search matches price or spaces", func(t *testing.T) {
		q := NewQuery("3", "", "")
		assert.True(t, q.Matches(entries[2]))
		assert.False(t, q.Matches(entries[0]))
		q = NewQuery("700", "", "")
		assert.True(t, q.Matches(entries[1]))
	})

	t.Run("sort by price descending", func(t *testing.T) {
		sorted := append([]Entry(nil), entries...)
		NewQuery("", "price", "desc").SortEntries(sorted)
		assert.Equal(t, []string{"3", "1", "2"}, ids(sorted))
	})

	t.Run("ties break on id", func(t *testing.T) {
		sorted := append([]Entry(nil), entries...)
		NewQuery("", "spaces", "asc").SortEntries(sorted)
		assert.Equal(t, []string{"3", "1", "2"}, ids(sorted))
	})
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
