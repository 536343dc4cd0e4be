package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/registre/sirene"
	"github.com/google/subcommands"
)

// sireneCmd is the top-level command for SIRENE-related operations.
type sireneCmd struct{}

func (*sireneCmd) Name() string     { return "sirene" }
func (*sireneCmd) Synopsis() string { return "SIRENE registry specific commands" }
func (*sireneCmd) Usage() string {
	return `sirene <subcommand> <options>

SIRENE registry specific commands.
`
}
func (c *sireneCmd) SetFlags(f *flag.FlagSet) {}

func (c *sireneCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "sirene")
	commander.Register(&sireneDownloadCmd{}, "")
	commander.Register(&sireneLoadCmd{}, "")
	commander.Register(&sireneSyncCmd{}, "")
	return commander.Execute(ctx, args...)
}

type sireneDownloadCmd struct {
	which string
}

func (*sireneDownloadCmd) Name() string     { return "download" }
func (*sireneDownloadCmd) Synopsis() string { return "download the monthly stock files" }
func (*sireneDownloadCmd) Usage() string {
	return `sirene download [-which unites|etablissements|all]

  Downloads the monthly SIRENE stock files. Interrupted transfers resume
  where they stopped.
`
}

func (c *sireneDownloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.which, "which", "all", "Stock files to download: unites, etablissements or all.")
}

func (c *sireneDownloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	d, release := auditedDownloader(cfg, "sirene")
	defer release()
	files, err := sirene.Download(ctx, d, sourceDir(cfg, "sirene"), sirene.Which(c.which))
	if err != nil {
		return fail(err)
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return subcommands.ExitSuccess
}

type sireneLoadCmd struct {
	which string
}

func (*sireneLoadCmd) Name() string     { return "load" }
func (*sireneLoadCmd) Synopsis() string { return "load the downloaded stock files" }
func (*sireneLoadCmd) Usage() string {
	return `sirene load [-which unites|etablissements|all]

  Replaces the registry tables with the content of the downloaded stock
  files.
`
}

func (c *sireneLoadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.which, "which", "all", "Stock files to load: unites, etablissements or all.")
}

func (c *sireneLoadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	counts, err := sirene.Load(st, sourceDir(cfg, "sirene"), sirene.Which(c.which))
	if err != nil {
		return fail(err)
	}
	printCounts(counts)
	return subcommands.ExitSuccess
}

type sireneSyncCmd struct {
	which string
}

func (*sireneSyncCmd) Name() string     { return "sync" }
func (*sireneSyncCmd) Synopsis() string { return "download then load the stock files" }
func (*sireneSyncCmd) Usage() string {
	return `sirene sync [-which unites|etablissements|all]

  Downloads the monthly stock files then loads them.
`
}

func (c *sireneSyncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.which, "which", "all", "Stock files to sync: unites, etablissements or all.")
}

func (c *sireneSyncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if status := (&sireneDownloadCmd{which: c.which}).Execute(ctx, f); status != subcommands.ExitSuccess {
		return status
	}
	return (&sireneLoadCmd{which: c.which}).Execute(ctx, f)
}
