package cmd

import (
	"context"
	"database/sql"
	"flag"
	"strings"

	"github.com/etnz/registre"
	"github.com/etnz/registre/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type searchCmd struct {
	departement string
	limit       int
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search companies by name or siren" }
func (*searchCmd) Usage() string {
	return `fms search [-dept <code>] [-n <limit>] <name or siren>

  Searches the registry by company name or SIREN and shows each match with
  its latest filed financial year.

Usage Examples:
$ fms search danone
$ fms search -dept 75 boulangerie
$ fms search 552032534
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.departement, "dept", "", "Restrict matches to a department code.")
	f.IntVar(&c.limit, "n", 20, "Maximum number of matches.")
}

func (c *searchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	query := strings.Join(f.Args(), " ")

	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	where := "denomination LIKE ?"
	args := []any{"%" + query + "%"}
	if siren := registre.CleanSiren(query); siren != "" {
		where = "siren = ?"
		args = []any{siren}
	}
	if c.departement != "" {
		where += " AND departement = ?"
		args = append(args, c.departement)
	}
	args = append(args, c.limit)

	rows, err := st.Query(`
		SELECT siren, denomination, categorie_juridique, commune, departement,
		       annee_financiere, chiffre_affaires, resultat_net
		FROM v_company_overview
		WHERE `+where+`
		ORDER BY siren
		LIMIT ?`, args...)
	if err != nil {
		return fail(err)
	}
	defer rows.Close()

	report := &renderer.SearchReport{Query: query}
	for rows.Next() {
		var siren string
		var denomination, forme, commune, departement sql.NullString
		var annee sql.NullInt64
		var revenue, netIncome sql.NullString
		if err := rows.Scan(&siren, &denomination, &forme, &commune, &departement,
			&annee, &revenue, &netIncome); err != nil {
			return fail(err)
		}
		report.Results = append(report.Results, renderer.Company{
			Siren:           siren,
			Denomination:    denomination.String,
			FormeJuridique:  forme.String,
			Ville:           commune.String,
			Departement:     departement.String,
			AnneeCloture:    annee.Int64,
			ChiffreAffaires: euros(revenue),
			ResultatNet:     euros(netIncome),
		})
	}
	if err := rows.Err(); err != nil {
		return fail(err)
	}

	printMarkdown(renderer.RenderSearch(report))
	return subcommands.ExitSuccess
}

// euros converts a NUMERIC column value to a displayable amount, nil when
// the column is NULL or unreadable.
func euros(v sql.NullString) *registre.Money {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	m := registre.EUR(d)
	return &m
}
