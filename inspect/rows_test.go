package inspect

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	ts := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)
	for _, tc := range []struct {
		desc     string
		in       any
		kind     etlbase.ValueKind
		expected string
	}{
		{desc: "nil", in: nil, kind: etlbase.KindNull, expected: etlbase.NullSentinel},
		{desc: "string", in: "hello", kind: etlbase.KindText, expected: "hello"},
		{desc: "bytes", in: []byte("raw"), kind: etlbase.KindText, expected: "raw"},
		{desc: "int64", in: int64(-7), kind: etlbase.KindInt, expected: "-7"},
		{desc: "int32", in: int32(12), kind: etlbase.KindInt, expected: "12"},
		{desc: "int", in: 99, kind: etlbase.KindInt, expected: "99"},
		{desc: "small uint64", in: uint64(42), kind: etlbase.KindInt, expected: "42"},
		{
			desc:     "uint64 above int64 range",
			in:       uint64(math.MaxUint64),
			kind:     etlbase.KindReal,
			expected: "18446744073709551615",
		},
		{desc: "float64", in: 1.25, kind: etlbase.KindReal, expected: "1.25"},
		{desc: "bool", in: true, kind: etlbase.KindText, expected: "true"},
		{desc: "timestamp", in: ts, kind: etlbase.KindTimestamp, expected: "2024-05-14T10:30:00Z"},
		{
			desc:     "numeric",
			in:       pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true},
			kind:     etlbase.KindReal,
			expected: "123.45",
		},
		{
			desc:     "invalid numeric",
			in:       pgtype.Numeric{},
			kind:     etlbase.KindNull,
			expected: etlbase.NullSentinel,
		},
		{
			desc:     "nan numeric",
			in:       pgtype.Numeric{NaN: true, Valid: true},
			kind:     etlbase.KindText,
			expected: "NaN",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			v, err := convertValue(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.kind, v.Kind())
			require.Equal(t, tc.expected, v.String())
		})
	}
}

func TestCheckIdentifier(t *testing.T) {
	for _, ok := range []string{"orders", "order_items", "_tmp", "t$1", "A2"} {
		require.NoError(t, checkIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "1abc", "orders; drop table x", `or"ders`, "a b"} {
		require.Error(t, checkIdentifier(bad), bad)
	}
}

func TestQuoting(t *testing.T) {
	require.Equal(t, `"orders"`, quotePG("orders"))
	require.Equal(t, `"or""ders"`, quotePG(`or"ders`))
	require.Equal(t, "`orders`", quoteMySQL("orders"))
	require.Equal(t, "`or``ders`", quoteMySQL("or`ders"))
}
