package pooling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBounds(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected []Bound
	}{
		{
			name:     "named bounds already sorted",
			value:    "low=10,high=20",
			expected: []Bound{{Lower: 10, Name: "low"}, {Lower: 20, Name: "high"}},
		},
		{
			name:     "named bounds out of order",
			value:    "high=20,low=10,mid=15",
			expected: []Bound{{Lower: 10, Name: "low"}, {Lower: 15, Name: "mid"}, {Lower: 20, Name: "high"}},
		},
		{
			name:     "bare bounds",
			value:    "26,19,21",
			expected: []Bound{{Lower: 19}, {Lower: 21}, {Lower: 26}},
		},
		{
			name:     "mixed named and bare",
			value:    "tablet=600,0",
			expected: []Bound{{Lower: 0}, {Lower: 600, Name: "tablet"}},
		},
		{
			name:     "whitespace is trimmed",
			value:    " low = 10 , 20 ",
			expected: []Bound{{Lower: 10, Name: "low"}, {Lower: 20}},
		},
		{
			name:     "empty name is unnamed",
			value:    "=5",
			expected: []Bound{{Lower: 5}},
		},
		{
			name:     "negative thresholds",
			value:    "cold=-10,warm=0",
			expected: []Bound{{Lower: -10, Name: "cold"}, {Lower: 0, Name: "warm"}},
		},
		{
			name:     "ties keep declaration order",
			value:    "b=10,a=10,c=5",
			expected: []Bound{{Lower: 5, Name: "c"}, {Lower: 10, Name: "b"}, {Lower: 10, Name: "a"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bounds, err := ParseBounds("shoal.pool.computed.api", tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, bounds.All())
		})
	}
}

func TestParseBounds_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		entry string
	}{
		{name: "non-numeric lower", value: "low=ten", entry: "low=ten"},
		{name: "non-numeric bare", value: "10,x", entry: "x"},
		{name: "empty value", value: "", entry: ""},
		{name: "trailing comma", value: "low=10,", entry: ""},
		{name: "extra equals", value: "a=b=3", entry: "a=b=3"},
		{name: "float", value: "1.5", entry: "1.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBounds("shoal.pool.computed.api", tc.value)
			require.Error(t, err)

			var malformed *MalformedBoundError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "shoal.pool.computed.api", malformed.Key)
			assert.Equal(t, tc.value, malformed.Value)
			assert.Equal(t, tc.entry, malformed.Entry)
			assert.Contains(t, err.Error(), "shoal.pool.computed.api")
		})
	}
}

func TestParseBounds_SortedAndIdempotent(t *testing.T) {
	values := []string{
		"a=3,b=1,c=2",
		"100,-5,0,42,7",
		"x=1",
		"z=9,y=9,x=9,w=1",
	}

	for _, value := range values {
		first, err := ParseBounds("k", value)
		require.NoError(t, err)
		second, err := ParseBounds("k", value)
		require.NoError(t, err)

		assert.Equal(t, first.All(), second.All(), "re-parsing %q must be stable", value)
		all := first.All()
		for i := 1; i < len(all); i++ {
			assert.LessOrEqual(t, all[i-1].Lower, all[i].Lower, "bounds for %q must be ascending", value)
		}
	}
}

func TestBounds_Index(t *testing.T) {
	bounds := NewBounds(Bound{Lower: 20, Name: "high"}, Bound{Lower: 10, Name: "low"})

	assert.Equal(t, -1, bounds.Index(5))
	assert.Equal(t, 0, bounds.Index(10))
	assert.Equal(t, 0, bounds.Index(19))
	assert.Equal(t, 1, bounds.Index(20))
	assert.Equal(t, 1, bounds.Index(1000))

	assert.Equal(t, -1, NewBounds().Index(0))
}

func TestBounds_AllReturnsCopy(t *testing.T) {
	bounds := NewBounds(Bound{Lower: 1, Name: "a"})
	all := bounds.All()
	all[0].Name = "mutated"

	assert.Equal(t, "a", bounds.At(0).Name)
}

func TestBounds_String(t *testing.T) {
	bounds, err := ParseBounds("k", "high=20,10")
	require.NoError(t, err)
	assert.Equal(t, "10,high=20", bounds.String())
}
