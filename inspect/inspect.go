// Package inspect implements schema introspection and full-table row loading
// over dbconn connections.
package inspect

import (
	"context"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUndefinedTable   = "42P01"
	mysqlNoSuchTable   = 1146
	mysqlAccessDenied  = 1045
	mysqlDBAccessError = 1044
)

// classify maps a driver error onto the closed error-kind set, falling back
// to the given kind when the error carries no more specific signal.
func classify(err error, fallback error) error {
	if err == nil {
		return nil
	}
	if etlbase.IsNotFound(err) || etlbase.IsConnectivity(err) || etlbase.IsConfiguration(err) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUndefinedTable {
			return etlbase.MarkNotFound(err)
		}
		// Class 08 is connection exceptions, class 28 is authorization.
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "28") {
			return etlbase.MarkConnectivity(err)
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlNoSuchTable:
			return etlbase.MarkNotFound(err)
		case mysqlAccessDenied, mysqlDBAccessError:
			return etlbase.MarkConnectivity(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return etlbase.MarkConnectivity(err)
	}
	return errors.Mark(err, fallback)
}

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

func checkIdentifier(name string) error {
	if !validIdentifier.MatchString(name) {
		return etlbase.MarkConfiguration(errors.Newf("invalid identifier %q", name))
	}
	return nil
}

func quotePG(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
