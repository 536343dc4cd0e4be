package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/registre/inpi"
	"github.com/google/subcommands"
)

// inpiCmd is the top-level command for INPI-related operations.
type inpiCmd struct{}

func (*inpiCmd) Name() string     { return "inpi" }
func (*inpiCmd) Synopsis() string { return "INPI annual accounts specific commands" }
func (*inpiCmd) Usage() string {
	return `inpi <subcommand> <options>

INPI annual accounts specific commands.
`
}
func (c *inpiCmd) SetFlags(f *flag.FlagSet) {}

func (c *inpiCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "inpi")
	commander.Register(&inpiDownloadCmd{}, "")
	commander.Register(&inpiLoadCmd{}, "")
	commander.Register(&inpiExtractCmd{}, "")
	commander.Register(&inpiSyncCmd{}, "")
	return commander.Execute(ctx, args...)
}

type inpiDownloadCmd struct {
	years    string
	maxFiles int
}

func (*inpiDownloadCmd) Name() string     { return "download" }
func (*inpiDownloadCmd) Synopsis() string { return "download the annual accounts archives" }
func (*inpiDownloadCmd) Usage() string {
	return `inpi download [-years A-B] [-max-files N]

  Downloads the 7z archives of annual accounts from the mirror, one
  directory per year. Already downloaded archives are skipped.
`
}

func (c *inpiDownloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.years, "years", "", "Year range to download, e.g. 2017-2023. Defaults to the configuration.")
	f.IntVar(&c.maxFiles, "max-files", 0, "Maximum archives per year, 0 for all. Defaults to the configuration.")
}

func (c *inpiDownloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	spec := c.years
	if spec == "" {
		spec = cfg.INPI.Years
	}
	years, err := inpi.ParseYears(spec)
	if err != nil {
		return fail(err)
	}
	maxFiles := c.maxFiles
	if maxFiles == 0 {
		maxFiles = cfg.INPI.MaxFiles
	}
	d, release := auditedDownloader(cfg, "inpi")
	defer release()
	files, err := inpi.DownloadMirror(ctx, d, sourceDir(cfg, "inpi"), years, maxFiles)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Downloaded %d archives\n", len(files))
	return subcommands.ExitSuccess
}

type inpiLoadCmd struct {
	year    int
	format  string
	workers int
}

func (*inpiLoadCmd) Name() string     { return "load" }
func (*inpiLoadCmd) Synopsis() string { return "load the downloaded archives" }
func (*inpiLoadCmd) Usage() string {
	return `inpi load [-year YYYY] [-format xml|json] [-workers N]

  Parses the downloaded archives and replaces the annual accounts tables.
  Parsing runs on a worker pool; a corrupt archive is skipped without
  affecting the others.
`
}

func (c *inpiLoadCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Single year to load, 0 for all downloaded years.")
	f.StringVar(&c.format, "format", "xml", "Archive format: xml (7z mirror) or json (secure transfer).")
	f.IntVar(&c.workers, "workers", 0, "Parsing workers, 0 for one per CPU.")
}

func (c *inpiLoadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "xml" && c.format != "json" {
		f.Usage()
		return subcommands.ExitUsageError
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

	workers := c.workers
	if workers == 0 {
		workers = cfg.INPI.Workers
	}
	load := inpi.LoadXML
	if c.format == "json" {
		load = inpi.LoadJSON
	}
	counts, err := load(st, sourceDir(cfg, "inpi"), c.year, workers)
	if err != nil {
		return fail(err)
	}
	printCounts(counts)
	return subcommands.ExitSuccess
}

type inpiExtractCmd struct {
	year    int
	out     string
	workers int
}

func (*inpiExtractCmd) Name() string     { return "extract" }
func (*inpiExtractCmd) Synopsis() string { return "extract the archives to flat CSV files" }
func (*inpiExtractCmd) Usage() string {
	return `inpi extract [-year YYYY] [-o <dir>] [-workers N]

  Parses the downloaded archives into one flat CSV file per year, without
  touching the database.
`
}

func (c *inpiExtractCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Single year to extract, 0 for all downloaded years.")
	f.StringVar(&c.out, "o", "data/exports", "Output directory for the CSV files.")
	f.IntVar(&c.workers, "workers", 0, "Parsing workers, 0 for one per CPU.")
}

func (c *inpiExtractCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	workers := c.workers
	if workers == 0 {
		workers = cfg.INPI.Workers
	}
	counts, err := inpi.ExtractCSV(sourceDir(cfg, "inpi"), c.out, c.year, workers)
	if err != nil {
		return fail(err)
	}
	printCounts(counts)
	return subcommands.ExitSuccess
}

type inpiSyncCmd struct {
	years string
}

func (*inpiSyncCmd) Name() string     { return "sync" }
func (*inpiSyncCmd) Synopsis() string { return "download then load the archives" }
func (*inpiSyncCmd) Usage() string {
	return `inpi sync [-years A-B]

  Downloads the annual accounts archives then loads them.
`
}

func (c *inpiSyncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.years, "years", "", "Year range to sync, e.g. 2017-2023. Defaults to the configuration.")
}

func (c *inpiSyncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if status := (&inpiDownloadCmd{years: c.years}).Execute(ctx, f); status != subcommands.ExitSuccess {
		return status
	}
	return (&inpiLoadCmd{format: "xml"}).Execute(ctx, f)
}
