package routing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalKeyOrdering(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int // Sign of Compare(a, b)
	}{
		{"Numeric before lexicographic", "A2", "A10", -1},
		{"Large numeric runs", "A10", "A100", -1},
		{"Plain text", "B1", "C1", -1},
		{"Equal labels", "A10", "A10", 0},
		{"Case-insensitive", "a10", "A10", 0},
		{"Prefix sorts first", "A", "A1", -1},
		{"Pure numbers", "9", "12", -1},
		{"Trailing text tie-break", "A1B", "A1C", -1},
		{"Number before text segment", "10", "AA", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewNaturalKey(tt.a).Compare(NewNaturalKey(tt.b))
			assert.Equal(t, tt.want, sign(got))
			assert.Equal(t, -tt.want, sign(NewNaturalKey(tt.b).Compare(NewNaturalKey(tt.a))))
		})
	}
}

func TestNaturalKeySort(t *testing.T) {
	labels := []string{"A10", "A2", "B1", "A1", "A21", "B2"}

	sort.Slice(labels, func(i, j int) bool {
		return NewNaturalKey(labels[i]).Compare(NewNaturalKey(labels[j])) < 0
	})

	assert.Equal(t, []string{"A1", "A2", "A10", "A21", "B1", "B2"}, labels)
}

func TestNaturalKeyInvert(t *testing.T) {
	t.Run("Numeric segments reverse", func(t *testing.T) {
		labels := []string{"R1", "R2", "R3"}

		sort.Slice(labels, func(i, j int) bool {
			return NewNaturalKey(labels[i]).Invert().Compare(NewNaturalKey(labels[j]).Invert()) < 0
		})

		assert.Equal(t, []string{"R3", "R2", "R1"}, labels)
	})

	t.Run("Text segments reverse", func(t *testing.T) {
		a := NewNaturalKey("RA").Invert()
		b := NewNaturalKey("RB").Invert()

		assert.Positive(t, a.Compare(b))
	})

	t.Run("Shared prefix still sorts first when inverted", func(t *testing.T) {
		short := NewNaturalKey("RA").Invert()
		long := NewNaturalKey("RAX").Invert()

		assert.Negative(t, short.Compare(long))
	})

	t.Run("Invert is involutive for comparison direction", func(t *testing.T) {
		a := NewNaturalKey("A2")
		b := NewNaturalKey("A10")

		assert.Negative(t, a.Compare(b))
		assert.Positive(t, a.Invert().Compare(b.Invert()))
	})
}

func TestNaturalKeyEmpty(t *testing.T) {
	empty := NewNaturalKey("")

	assert.Nil(t, empty)
	assert.Negative(t, empty.Compare(NewNaturalKey("A1")))
	assert.Equal(t, 0, empty.Compare(NewNaturalKey("")))
}

// BenchmarkNewNaturalKey benchmarks key decomposition of a typical bin label
func BenchmarkNewNaturalKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewNaturalKey("A10-R22-S3-L1")
	}
}

// BenchmarkNaturalKeyCompare benchmarks comparing two decomposed labels
func BenchmarkNaturalKeyCompare(b *testing.B) {
	x := NewNaturalKey("A10-R22-S3-L1")
	y := NewNaturalKey("A10-R22-S3-L2")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Compare(y)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
