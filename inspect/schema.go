package inspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/dbconn"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/jackc/pgx/v5"
)

// Schema returns a snapshot of the table's structure on the given
// connection. A table with no columns is treated as absent.
func Schema(ctx context.Context, conn dbconn.Conn, table string) (etlbase.SchemaSnapshot, error) {
	if err := checkIdentifier(table); err != nil {
		return etlbase.SchemaSnapshot{}, err
	}
	var snap etlbase.SchemaSnapshot
	var err error
	switch conn := conn.(type) {
	case *dbconn.PGConn:
		snap, err = pgSchema(ctx, conn, table)
	case *dbconn.MySQLConn:
		snap, err = mysqlSchema(ctx, conn, table)
	default:
		return snap, etlbase.MarkSchemaIntrospection(errors.Newf("connection %T not supported", conn))
	}
	if err != nil {
		return snap, classify(
			errors.Wrapf(err, "error introspecting %s on %s", table, conn.ID()),
			etlbase.ErrSchemaIntrospection,
		)
	}
	if len(snap.Columns) == 0 {
		return snap, etlbase.MarkNotFound(errors.Newf("table %s not found on %s", table, conn.ID()))
	}
	snap.TableName = table
	return snap, nil
}

func pgSchema(ctx context.Context, conn *dbconn.PGConn, table string) (etlbase.SchemaSnapshot, error) {
	var snap etlbase.SchemaSnapshot

	rows, err := conn.Query(
		ctx,
		`SELECT column_name, data_type,
    COALESCE(character_maximum_length, 0),
    is_nullable = 'YES',
    COALESCE(column_default, '')
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var col etlbase.ColumnDef
		if err := rows.Scan(&col.Name, &col.Type, &col.Length, &col.Nullable, &col.Default); err != nil {
			rows.Close()
			return snap, errors.Wrap(err, "error decoding column metadata")
		}
		snap.Columns = append(snap.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting column metadata")
	}

	rows, err = conn.Query(
		ctx,
		`SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
    USING (constraint_name, table_schema, table_name)
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_schema = current_schema()
  AND tc.table_name = $1
ORDER BY kcu.ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return snap, errors.Wrap(err, "error decoding primary key")
		}
		snap.PrimaryKeys = append(snap.PrimaryKeys, c)
	}
	if err := rows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting primary key")
	}

	rows, err = conn.Query(
		ctx,
		`SELECT tc.constraint_name, kcu.column_name, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
    ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
    ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
  AND tc.table_schema = current_schema()
  AND tc.table_name = $1
ORDER BY tc.constraint_name, kcu.ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	fkOrder, fks, err := scanForeignKeys(pgFKRows{rows})
	if err != nil {
		return snap, err
	}
	for _, name := range fkOrder {
		snap.ForeignKeys = append(snap.ForeignKeys, *fks[name])
	}

	rows, err = conn.Query(
		ctx,
		`SELECT i.relname, a.attname, ix.indisunique
FROM pg_class t
JOIN pg_index ix ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
WHERE t.relname = $1 AND t.relkind = 'r'
ORDER BY i.relname, a.attnum`,
		table,
	)
	if err != nil {
		return snap, err
	}
	idxOrder := []string{}
	idxs := map[string]*etlbase.IndexDef{}
	for rows.Next() {
		var name, column string
		var unique bool
		if err := rows.Scan(&name, &column, &unique); err != nil {
			rows.Close()
			return snap, errors.Wrap(err, "error decoding index metadata")
		}
		idx, ok := idxs[name]
		if !ok {
			idx = &etlbase.IndexDef{Name: name, Unique: unique}
			idxs[name] = idx
			idxOrder = append(idxOrder, name)
		}
		idx.Columns = append(idx.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting index metadata")
	}
	for _, name := range idxOrder {
		snap.Indexes = append(snap.Indexes, *idxs[name])
	}
	return snap, nil
}

func mysqlSchema(ctx context.Context, conn *dbconn.MySQLConn, table string) (etlbase.SchemaSnapshot, error) {
	var snap etlbase.SchemaSnapshot

	rows, err := conn.QueryContext(
		ctx,
		`SELECT column_name, data_type,
    COALESCE(character_maximum_length, 0),
    is_nullable = 'YES',
    COALESCE(column_default, '')
FROM information_schema.columns
WHERE table_schema = database() AND table_name = ?
ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var col etlbase.ColumnDef
		if err := rows.Scan(&col.Name, &col.Type, &col.Length, &col.Nullable, &col.Default); err != nil {
			return snap, errors.Wrap(err, "error decoding column metadata")
		}
		col.Name = strings.ToLower(col.Name)
		snap.Columns = append(snap.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting column metadata")
	}

	pkRows, err := conn.QueryContext(
		ctx,
		`SELECT k.column_name
FROM information_schema.table_constraints t
JOIN information_schema.key_column_usage k
USING(constraint_name,table_schema,table_name)
WHERE t.constraint_type = 'PRIMARY KEY'
  AND t.table_schema = database()
  AND t.table_name = ?
  ORDER BY k.ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	defer pkRows.Close()
	for pkRows.Next() {
		var c string
		if err := pkRows.Scan(&c); err != nil {
			return snap, errors.Wrap(err, "error decoding primary key")
		}
		snap.PrimaryKeys = append(snap.PrimaryKeys, strings.ToLower(c))
	}
	if err := pkRows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting primary key")
	}

	fkRows, err := conn.QueryContext(
		ctx,
		`SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = database()
  AND table_name = ?
  AND referenced_table_name IS NOT NULL
ORDER BY constraint_name, ordinal_position`,
		table,
	)
	if err != nil {
		return snap, err
	}
	defer fkRows.Close()
	fkOrder, fks, err := scanForeignKeys(mysqlFKRows{fkRows})
	if err != nil {
		return snap, err
	}
	for _, name := range fkOrder {
		snap.ForeignKeys = append(snap.ForeignKeys, *fks[name])
	}

	idxRows, err := conn.QueryContext(
		ctx,
		`SELECT index_name, column_name, non_unique
FROM information_schema.statistics
WHERE table_schema = database() AND table_name = ?
ORDER BY index_name, seq_in_index`,
		table,
	)
	if err != nil {
		return snap, err
	}
	defer idxRows.Close()
	idxOrder := []string{}
	idxs := map[string]*etlbase.IndexDef{}
	for idxRows.Next() {
		var name, column string
		var nonUnique int
		if err := idxRows.Scan(&name, &column, &nonUnique); err != nil {
			return snap, errors.Wrap(err, "error decoding index metadata")
		}
		idx, ok := idxs[name]
		if !ok {
			idx = &etlbase.IndexDef{Name: name, Unique: nonUnique == 0}
			idxs[name] = idx
			idxOrder = append(idxOrder, name)
		}
		idx.Columns = append(idx.Columns, strings.ToLower(column))
	}
	if err := idxRows.Err(); err != nil {
		return snap, errors.Wrap(err, "error collecting index metadata")
	}
	for _, name := range idxOrder {
		snap.Indexes = append(snap.Indexes, *idxs[name])
	}
	return snap, nil
}

// fkRowScanner abstracts over pgx and database/sql row cursors just enough
// to group foreign key rows by constraint.
type fkRowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type pgFKRows struct {
	pgx.Rows
}

type mysqlFKRows struct {
	*sql.Rows
}

func (r mysqlFKRows) Close() {
	_ = r.Rows.Close()
}

func scanForeignKeys(rows fkRowScanner) ([]string, map[string]*etlbase.FKDef, error) {
	order := []string{}
	fks := map[string]*etlbase.FKDef{}
	for rows.Next() {
		var name, column, refTable, refColumn string
		if err := rows.Scan(&name, &column, &refTable, &refColumn); err != nil {
			rows.Close()
			return nil, nil, errors.Wrap(err, "error decoding foreign key metadata")
		}
		fk, ok := fks[name]
		if !ok {
			fk = &etlbase.FKDef{ReferredTable: refTable}
			fks[name] = fk
			order = append(order, name)
		}
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, column)
		fk.ReferredColumns = append(fk.ReferredColumns, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "error collecting foreign key metadata")
	}
	return order, fks, nil
}
