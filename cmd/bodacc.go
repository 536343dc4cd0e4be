package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/etnz/registre/bodacc"
	"github.com/google/subcommands"
)

// bodaccCmd is the top-level command for BODACC-related operations.
type bodaccCmd struct{}

func (*bodaccCmd) Name() string     { return "bodacc" }
func (*bodaccCmd) Synopsis() string { return "BODACC legal announcements specific commands" }
func (*bodaccCmd) Usage() string {
	return `bodacc <subcommand> <options>

BODACC legal announcements specific commands.
`
}
func (c *bodaccCmd) SetFlags(f *flag.FlagSet) {}

func (c *bodaccCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "bodacc")
	commander.Register(&bodaccDownloadCmd{}, "")
	commander.Register(&bodaccLoadCmd{}, "")
	commander.Register(&bodaccSyncCmd{}, "")
	return commander.Execute(ctx, args...)
}

type bodaccDownloadCmd struct {
	year int
	days int
}

func (*bodaccDownloadCmd) Name() string     { return "download" }
func (*bodaccDownloadCmd) Synopsis() string { return "download legal announcements" }
func (*bodaccDownloadCmd) Usage() string {
	return `bodacc download [-year YYYY | -days N]

  Fetches announcements from the OpenDataSoft API: a full year with -year,
  the most recent days otherwise.
`
}

func (c *bodaccDownloadCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Full year to backfill. Overrides -days.")
	f.IntVar(&c.days, "days", 7, "Number of recent days to fetch.")
}

func (c *bodaccDownloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	client := bodacc.NewClient(cfg.BODACC.PageSize)
	out, err := client.Download(ctx, sourceDir(cfg, "bodacc"), c.year, c.days)
	if err != nil {
		return fail(err)
	}
	if out == "" {
		fmt.Println("No announcement in the requested range.")
		return subcommands.ExitSuccess
	}
	if st := openAudit(cfg); st != nil {
		defer st.Close()
		var size int64
		if fi, err := os.Stat(out); err == nil {
			size = fi.Size()
		}
		if err := st.RecordDownload("bodacc", client.BaseURL, filepath.Base(out), size); err != nil {
			log.Printf("cannot record download of %s: %v", out, err)
		}
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}

type bodaccLoadCmd struct{}

func (*bodaccLoadCmd) Name() string     { return "load" }
func (*bodaccLoadCmd) Synopsis() string { return "load the downloaded announcements" }
func (*bodaccLoadCmd) Usage() string {
	return `bodacc load

  Loads every downloaded announcement file, keyed by announcement id so
  overlapping downloads never duplicate rows.
`
}

func (c *bodaccLoadCmd) SetFlags(f *flag.FlagSet) {}

func (c *bodaccLoadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	n, err := bodacc.Load(st, sourceDir(cfg, "bodacc"))
	if err != nil {
		return fail(err)
	}
	fmt.Printf("bodacc_annonces: %d rows\n", n)
	return subcommands.ExitSuccess
}

type bodaccSyncCmd struct {
	year int
	days int
}

func (*bodaccSyncCmd) Name() string     { return "sync" }
func (*bodaccSyncCmd) Synopsis() string { return "download then load announcements" }
func (*bodaccSyncCmd) Usage() string {
	return `bodacc sync [-year YYYY | -days N]

  Downloads announcements then loads them.
`
}

func (c *bodaccSyncCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Full year to backfill. Overrides -days.")
	f.IntVar(&c.days, "days", 7, "Number of recent days to fetch.")
}

func (c *bodaccSyncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if status := (&bodaccDownloadCmd{year: c.year, days: c.days}).Execute(ctx, f); status != subcommands.ExitSuccess {
		return status
	}
	return (&bodaccLoadCmd{}).Execute(ctx, f)
}
