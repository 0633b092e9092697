package inspect

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/jackc/pgx/v5/pgtype"
)

type loadOptions struct {
	orderBy []string
}

type LoadOption func(*loadOptions)

// WithOrderBy sorts the loaded rows by the given columns on the database
// side, which keeps positional comparison stable across sources.
func WithOrderBy(columns ...string) LoadOption {
	return func(o *loadOptions) {
		o.orderBy = columns
	}
}

// LoadRows fetches every row of the table into memory. Column and table
// names are validated before being interpolated into the statement.
func LoadRows(
	ctx context.Context, conn dbconn.Conn, table string, opts ...LoadOption,
) (etlbase.RowSet, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	for _, col := range o.orderBy {
		if err := checkIdentifier(col); err != nil {
			return nil, err
		}
	}
	var rs etlbase.RowSet
	var err error
	switch conn := conn.(type) {
	case *dbconn.PGConn:
		rs, err = pgLoadRows(ctx, conn, table, o)
	case *dbconn.MySQLConn:
		rs, err = mysqlLoadRows(ctx, conn, table, o)
	default:
		return nil, etlbase.MarkDataLoad(errors.Newf("connection %T not supported", conn))
	}
	if err != nil {
		return nil, classify(
			errors.Wrapf(err, "error loading rows from %s on %s", table, conn.ID()),
			etlbase.ErrDataLoad,
		)
	}
	return rs, nil
}

func pgLoadRows(
	ctx context.Context, conn *dbconn.PGConn, table string, o loadOptions,
) (etlbase.RowSet, error) {
	stmt := "SELECT * FROM " + quotePG(table)
	if len(o.orderBy) > 0 {
		quoted := make([]string, len(o.orderBy))
		for i, col := range o.orderBy {
			quoted[i] = quotePG(col)
		}
		stmt += " ORDER BY " + strings.Join(quoted, ", ")
	}
	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}
	var rs etlbase.RowSet
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "error decoding row")
		}
		pairs := make([]etlbase.Pair, len(columns))
		for i, col := range columns {
			v, err := convertValue(vals[i])
			if err != nil {
				return nil, errors.Wrapf(err, "error converting column %s", col)
			}
			pairs[i] = etlbase.Pair{Column: col, Value: v}
		}
		rs = append(rs, etlbase.NewRow(pairs...))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func mysqlLoadRows(
	ctx context.Context, conn *dbconn.MySQLConn, table string, o loadOptions,
) (etlbase.RowSet, error) {
	stmt := "SELECT * FROM " + quoteMySQL(table)
	if len(o.orderBy) > 0 {
		quoted := make([]string, len(o.orderBy))
		for i, col := range o.orderBy {
			quoted[i] = quoteMySQL(col)
		}
		stmt += " ORDER BY " + strings.Join(quoted, ", ")
	}
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for i, col := range columns {
		columns[i] = strings.ToLower(col)
	}
	var rs etlbase.RowSet
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "error decoding row")
		}
		pairs := make([]etlbase.Pair, len(columns))
		for i, col := range columns {
			v, err := convertValue(vals[i])
			if err != nil {
				return nil, errors.Wrapf(err, "error converting column %s", col)
			}
			pairs[i] = etlbase.Pair{Column: col, Value: v}
		}
		rs = append(rs, etlbase.NewRow(pairs...))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// convertValue maps a driver-level value onto the comparison value model.
// Unknown driver types degrade to their text rendering rather than erroring,
// so both sides degrade identically.
func convertValue(v any) (etlbase.Value, error) {
	switch v := v.(type) {
	case nil:
		return etlbase.NullValue(), nil
	case string:
		return etlbase.TextValue(v), nil
	case []byte:
		return etlbase.TextValue(string(v)), nil
	case int64:
		return etlbase.IntValue(v), nil
	case int32:
		return etlbase.IntValue(int64(v)), nil
	case int16:
		return etlbase.IntValue(int64(v)), nil
	case int8:
		return etlbase.IntValue(int64(v)), nil
	case int:
		return etlbase.IntValue(int64(v)), nil
	case uint64:
		// Unsigned BIGINT can exceed the int64 range; those values keep
		// their magnitude as decimals instead of wrapping negative.
		if v > math.MaxInt64 {
			var bi apd.BigInt
			bi.SetUint64(v)
			return etlbase.RealValue(apd.NewWithBigInt(&bi, 0)), nil
		}
		return etlbase.IntValue(int64(v)), nil
	case float64:
		return floatValue(v)
	case float32:
		return floatValue(float64(v))
	case bool:
		return etlbase.TextValue(strconv.FormatBool(v)), nil
	case time.Time:
		return etlbase.TimestampValue(v), nil
	case pgtype.Numeric:
		if !v.Valid {
			return etlbase.NullValue(), nil
		}
		if v.NaN {
			return etlbase.TextValue("NaN"), nil
		}
		var bi apd.BigInt
		bi.SetMathBigInt(v.Int)
		return etlbase.RealValue(apd.NewWithBigInt(&bi, v.Exp)), nil
	default:
		return etlbase.TextValue(fmt.Sprintf("%v", v)), nil
	}
}

func floatValue(f float64) (etlbase.Value, error) {
	d := &apd.Decimal{}
	if _, err := d.SetFloat64(f); err != nil {
		return etlbase.TextValue(strconv.FormatFloat(f, 'g', -1, 64)), nil
	}
	return etlbase.RealValue(d), nil
}
