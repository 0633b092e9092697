package etlbase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	ts := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)
	for _, tc := range []struct {
		desc     string
		val      Value
		expected string
	}{
		{desc: "null", val: NullValue(), expected: NullSentinel},
		{desc: "text", val: TextValue("hello"), expected: "hello"},
		{desc: "empty text", val: TextValue(""), expected: ""},
		{desc: "int", val: IntValue(-42), expected: "-42"},
		{desc: "real", val: RealValue(apd.New(125, -2)), expected: "1.25"},
		{desc: "timestamp", val: TimestampValue(ts), expected: "2024-05-14T10:30:00Z"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.val.String())
		})
	}
}

func TestValueCanonicalDistinguishesKinds(t *testing.T) {
	// The text "1" and the integer 1 stringify identically but must stay
	// distinct set members.
	require.Equal(t, TextValue("1").String(), IntValue(1).String())
	require.NotEqual(t, TextValue("1").Canonical(), IntValue(1).Canonical())

	// A literal "<NULL>" string never collides with an actual NULL.
	require.Equal(t, TextValue(NullSentinel).String(), NullValue().String())
	require.NotEqual(t, TextValue(NullSentinel).Canonical(), NullValue().Canonical())
}

func TestValueEqual(t *testing.T) {
	require.True(t, NullValue().Equal(NullValue()))
	require.True(t, IntValue(7).Equal(IntValue(7)))
	require.False(t, IntValue(7).Equal(IntValue(8)))
	require.False(t, IntValue(7).Equal(TextValue("7")))
	require.True(t, Value{}.Equal(NullValue()))
}

func TestValueMarshalJSON(t *testing.T) {
	b, err := json.Marshal(NullValue())
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	b, err = json.Marshal(IntValue(3))
	require.NoError(t, err)
	require.Equal(t, `"3"`, string(b))
}

func TestRowCanonical(t *testing.T) {
	a := NewRow(
		Pair{Column: "id", Value: IntValue(1)},
		Pair{Column: "name", Value: TextValue("x")},
	)
	// Same cells, different column order.
	b := NewRow(
		Pair{Column: "name", Value: TextValue("x")},
		Pair{Column: "id", Value: IntValue(1)},
	)
	require.Equal(t, a.Canonical(), b.Canonical())

	c := NewRow(
		Pair{Column: "id", Value: IntValue(2)},
		Pair{Column: "name", Value: TextValue("x")},
	)
	require.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestRowKeyCanonical(t *testing.T) {
	r := NewRow(
		Pair{Column: "id", Value: IntValue(1)},
		Pair{Column: "region", Value: TextValue("emea")},
		Pair{Column: "name", Value: TextValue("x")},
	)
	key := []string{"id", "region"}
	require.Equal(t, r.KeyCanonical(key), r.KeyCanonical(key))

	other := NewRow(
		Pair{Column: "id", Value: IntValue(1)},
		Pair{Column: "region", Value: TextValue("emea")},
		Pair{Column: "name", Value: TextValue("different")},
	)
	require.Equal(t, r.KeyCanonical(key), other.KeyCanonical(key))

	// Missing key column encodes as NULL rather than panicking.
	short := NewRow(Pair{Column: "id", Value: IntValue(1)})
	require.Equal(t, short.KeyCanonical([]string{"id", "region"}),
		NewRow(
			Pair{Column: "id", Value: IntValue(1)},
			Pair{Column: "region", Value: NullValue()},
		).KeyCanonical([]string{"id", "region"}))
}

func TestRowValue(t *testing.T) {
	r := NewRow(Pair{Column: "id", Value: IntValue(1)})
	v, ok := r.Value("id")
	require.True(t, ok)
	require.True(t, v.Equal(IntValue(1)))
	_, ok = r.Value("missing")
	require.False(t, ok)
}
