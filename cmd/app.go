// Package cmd implements the CLI application to manage the registry database.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/etnz/registre"
	"github.com/etnz/registre/fetch"
	"github.com/etnz/registre/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initDBCmd{}, "database")
	c.Register(&statsCmd{}, "database")
	c.Register(&searchCmd{}, "database")
	c.Register(&exportCmd{}, "database")

	c.Register(&sireneCmd{}, "sources")
	c.Register(&inpiCmd{}, "sources")
	c.Register(&bodaccCmd{}, "sources")
	c.Register(&pappersCmd{}, "sources")

	c.Register(&topicCmd{}, "help")
	c.Register(&AssistCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", "", "Path to the YAML configuration file")
	dbPath       = flag.String("db", "", "Override the database path")
	downloadsDir = flag.String("downloads", "", "Override the downloads directory")
	verbose      = flag.Bool("v", false, "Verbose progress logging")
)

// LoadConfig resolves the application configuration from file, environment
// and command line, and tunes logging accordingly. Every command calls it
// before touching the network or the disk.
func LoadConfig() (registre.Config, error) {
	cfg, err := registre.LoadConfig(*configFile)
	if err != nil {
		return cfg, err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *downloadsDir != "" {
		cfg.Downloads.Dir = *downloadsDir
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	return cfg, nil
}

// OpenStore opens the database for a command that reads or loads data.
func OpenStore(cfg registre.Config) (*store.Store, error) {
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("database %s not found, run 'fms init-db' first", cfg.Database.Path)
	}
	return store.Open(cfg.Database.Path)
}

// sourceDir returns the downloads subdirectory of one source.
func sourceDir(cfg registre.Config, source string) string {
	return filepath.Join(cfg.Downloads.Dir, source)
}

func newDownloader(cfg registre.Config) *fetch.Downloader {
	d := fetch.NewDownloader()
	d.Attempts = cfg.Downloads.Attempts
	if *verbose {
		d.Progress = func(downloaded, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\r%d/%d MiB", downloaded>>20, total>>20)
			}
		}
	}
	return d
}

// auditedDownloader returns a downloader that records each completed fetch
// in etl_downloads, and a release function to call when done. Downloads also
// run before init-db, so a missing database skips the audit instead of
// failing.
func auditedDownloader(cfg registre.Config, source string) (*fetch.Downloader, func()) {
	d := newDownloader(cfg)
	st := openAudit(cfg)
	if st == nil {
		return d, func() {}
	}
	d.Record = func(url, destination string, size int64) {
		if err := st.RecordDownload(source, url, filepath.Base(destination), size); err != nil {
			log.Printf("cannot record download of %s: %v", destination, err)
		}
	}
	return d, func() { st.Close() }
}

// openAudit opens the database for download auditing, nil when it does not
// exist yet.
func openAudit(cfg registre.Config) *store.Store {
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		return nil
	}
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Printf("cannot open database for download audit: %v", err)
		return nil
	}
	return st
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// printCounts prints per-table row counts in a stable order.
func printCounts[N int | int64](counts map[string]N) {
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Printf("%s: %d rows\n", table, counts[table])
	}
}
