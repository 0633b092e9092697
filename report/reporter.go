// Package report fans comparison outcomes out to pluggable sinks.
package report

import (
	"github.com/hsharma0052/etlverify/datadiff"
	"github.com/hsharma0052/etlverify/tablecompare"
	"github.com/rs/zerolog"
)

// ReportableObject is anything a Reporter can accept.
type ReportableObject interface{}

// StatusReport is a freeform progress message.
type StatusReport struct {
	Info string
}

// TableError reports a comparison that failed outright.
type TableError struct {
	Environment string
	TableName   string
	Err         error
}

// TableSummary reports a completed comparison.
type TableSummary struct {
	Environment string
	Result      *tablecompare.Result
}

type Reporter interface {
	Report(obj ReportableObject)
	Close()
}

// CombinedReporter fans each object out to every registered reporter.
type CombinedReporter struct {
	Reporters []Reporter
}

func (c CombinedReporter) Report(obj ReportableObject) {
	for _, r := range c.Reporters {
		r.Report(obj)
	}
}

func (c CombinedReporter) Close() {
	for _, r := range c.Reporters {
		r.Close()
	}
}

// LogReporter writes every reported object to the logger.
type LogReporter struct {
	zerolog.Logger
}

func (l LogReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case StatusReport:
		l.Info().Msgf("%s", obj.Info)
	case TableError:
		l.Err(obj.Err).
			Str("environment", obj.Environment).
			Str("table", obj.TableName).
			Msgf("error comparing table")
	case TableSummary:
		l.reportSummary(obj)
	default:
		l.Error().Msgf("unknown object type %T to report: %v", obj, obj)
	}
}

func (l LogReporter) reportSummary(s TableSummary) {
	res := s.Result
	logger := l.With().
		Str("environment", s.Environment).
		Str("table", res.TableName).
		Logger()
	if res.Identical() {
		logger.Info().
			Int("rows", res.Summary.RowCounts.A).
			Msgf("table matches")
		return
	}
	for _, d := range res.SchemaDiff.ColumnDifferences {
		ev := logger.Warn().Str("kind", d.Kind.String()).Str("column", d.Column)
		if d.SideA != nil {
			ev = ev.Str("reference", d.SideA.String())
		}
		if d.SideB != nil {
			ev = ev.Str("candidate", d.SideB.String())
		}
		ev.Msgf("column mismatch")
	}
	if res.SchemaDiff.PrimaryKeyDifference != nil {
		logger.Warn().
			Strs("reference", res.SchemaDiff.PrimaryKeyDifference.SideA).
			Strs("candidate", res.SchemaDiff.PrimaryKeyDifference.SideB).
			Msgf("primary key mismatch")
	}
	for _, d := range res.SchemaDiff.ForeignKeyDifferences {
		logger.Warn().
			Str("kind", d.Kind.String()).
			Str("referred_table", d.Detail.ReferredTable).
			Str("foreign_key", d.Detail.Key()).
			Msgf("foreign key mismatch")
	}
	for _, d := range res.SchemaDiff.IndexDifferences {
		logger.Warn().
			Str("kind", d.Kind.String()).
			Str("index", d.Detail.Name).
			Strs("columns", d.Detail.Columns).
			Bool("unique", d.Detail.Unique).
			Msgf("index mismatch")
	}
	if res.DataDiff.RowCountDifference != 0 {
		logger.Warn().
			Int("reference", res.Summary.RowCounts.A).
			Int("candidate", res.Summary.RowCounts.B).
			Msgf("row count mismatch")
	}
	for _, mr := range res.DataDiff.MissingRows {
		side := "candidate"
		if mr.Side == datadiff.MissingInA {
			side = "reference"
		}
		d := zerolog.Dict()
		for _, p := range mr.Row.Pairs() {
			d = d.Str(p.Column, p.Value.String())
		}
		logger.Warn().
			Str("missing_on", side).
			Dict("row", d).
			Msgf("missing row")
	}
	for _, vm := range res.DataDiff.ValueMismatches {
		logger.Warn().
			Str("column", vm.Column).
			Int("row", vm.RowIndex).
			Str("reference", vm.ValueA.String()).
			Str("candidate", vm.ValueB.String()).
			Msgf("value mismatch")
	}
}

func (l LogReporter) Close() {}
