package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/registre"
	"github.com/etnz/registre/pappers"
	"github.com/google/subcommands"
)

// pappersCmd is the top-level command for Pappers-related operations.
type pappersCmd struct{}

func (*pappersCmd) Name() string     { return "pappers" }
func (*pappersCmd) Synopsis() string { return "Pappers API specific commands" }
func (*pappersCmd) Usage() string {
	return `pappers <subcommand> <options>

Pappers API specific commands. Requires an API key, set PAPPERS_API_KEY or
pappers.api_key in the configuration.
`
}
func (c *pappersCmd) SetFlags(f *flag.FlagSet) {}

func (c *pappersCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "pappers")
	commander.Register(&pappersEntrepriseCmd{}, "")
	commander.Register(&pappersRechercheCmd{}, "")
	return commander.Execute(ctx, args...)
}

func pappersClient() (*pappers.Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Pappers.APIKey == "" {
		return nil, fmt.Errorf("no Pappers API key, set PAPPERS_API_KEY or pappers.api_key")
	}
	return pappers.NewClient(cfg.Pappers.APIKey), nil
}

func printJSON(data any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type pappersEntrepriseCmd struct{}

func (*pappersEntrepriseCmd) Name() string     { return "entreprise" }
func (*pappersEntrepriseCmd) Synopsis() string { return "fetch the full record of a company" }
func (*pappersEntrepriseCmd) Usage() string {
	return `pappers entreprise <siren>

  Fetches the full record of a company from the Pappers API, financial
  statements and officers included, and prints it as JSON.
`
}

func (c *pappersEntrepriseCmd) SetFlags(f *flag.FlagSet) {}

func (c *pappersEntrepriseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || registre.CleanSiren(f.Arg(0)) == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	client, err := pappersClient()
	if err != nil {
		return fail(err)
	}
	data, err := client.Entreprise(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	return printJSON(data)
}

type pappersRechercheCmd struct {
	departement string
	limit       int
}

func (*pappersRechercheCmd) Name() string     { return "recherche" }
func (*pappersRechercheCmd) Synopsis() string { return "search companies on the Pappers API" }
func (*pappersRechercheCmd) Usage() string {
	return `pappers recherche [-dept <code>] [-n <limit>] <query>

  Searches companies by name on the Pappers API and prints the matches as
  JSON.
`
}

func (c *pappersRechercheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.departement, "dept", "", "Restrict matches to a department code.")
	f.IntVar(&c.limit, "n", 10, "Maximum number of matches.")
}

func (c *pappersRechercheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	client, err := pappersClient()
	if err != nil {
		return fail(err)
	}
	results, err := client.Recherche(f.Arg(0), c.departement, c.limit)
	if err != nil {
		return fail(err)
	}
	return printJSON(results)
}
