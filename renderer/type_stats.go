package renderer

import (
	"sort"

	"github.com/etnz/registre/date"
	"github.com/etnz/registre/store"
)

// StatsReport holds everything the database statistics report displays.
type StatsReport struct {
	Database string
	Date     date.Date
	Tables   []TableCount
	Loads    []SourceLoad
}

// TableCount is the row count of one data table.
type TableCount struct {
	Table string
	Rows  int64
}

// SourceLoad is the last successful load of one source.
type SourceLoad struct {
	Source      string
	CompletedAt string
}

// NewStatsReport builds the report view from database statistics. Tables
// keep the schema order, loads are sorted by source.
func NewStatsReport(database string, s *store.Stats) *StatsReport {
	r := &StatsReport{Database: database, Date: date.Today()}
	for _, table := range store.DataTables {
		r.Tables = append(r.Tables, TableCount{Table: table, Rows: s.Rows[table]})
	}
	sources := make([]string, 0, len(s.LastLoads))
	for source := range s.LastLoads {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		r.Loads = append(r.Loads, SourceLoad{Source: source, CompletedAt: s.LastLoads[source]})
	}
	return r
}
