package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/registre/store"
	"github.com/google/subcommands"
)

type exportCmd struct {
	table string
	out   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a table to CSV" }
func (*exportCmd) Usage() string {
	return `fms export -table <name> [-o <file>]

  Exports a data table (or the v_company_overview view) to a CSV file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.table, "table", "", "Table to export: "+strings.Join(store.DataTables, ", ")+" or v_company_overview.")
	f.StringVar(&c.out, "o", "", "Output file. Defaults to <table>.csv.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !exportable(c.table) {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if c.out == "" {
		c.out = c.table + ".csv"
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	n, err := exportCSV(st, c.table, c.out)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Exported %d rows to %s\n", n, c.out)
	return subcommands.ExitSuccess
}

// exportable accepts only known table names, the query is built by
// concatenation.
func exportable(table string) bool {
	if table == "v_company_overview" {
		return true
	}
	for _, t := range store.DataTables {
		if t == table {
			return true
		}
	}
	return false
}

func exportCSV(st *store.Store, table, out string) (int64, error) {
	rows, err := st.Query("SELECT * FROM " + table)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	file, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(cols); err != nil {
		return 0, err
	}

	values := make([]any, len(cols))
	for i := range values {
		values[i] = new(any)
	}
	var n int64
	record := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return n, err
		}
		for i, v := range values {
			record[i] = cell(*v.(*any))
		}
		if err := w.Write(record); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	w.Flush()
	return n, w.Error()
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
