package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/registre/store"
	"github.com/google/subcommands"
)

type initDBCmd struct {
	force bool
}

func (*initDBCmd) Name() string     { return "init-db" }
func (*initDBCmd) Synopsis() string { return "create the database schema" }
func (*initDBCmd) Usage() string {
	return `fms init-db [-force]

  Creates the database file with every table, view and index. Safe to run
  on an existing database. With -force, drops and recreates the data tables
  after confirmation: all loaded data is lost.
`
}

func (c *initDBCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Drop and recreate the data tables.")
}

func (c *initDBCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}

	if c.force {
		fmt.Printf("This will drop every data table of %s. Type 'yes' to continue: ", cfg.Database.Path)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Aborted.")
			return subcommands.ExitFailure
		}
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(err)
		}
	}
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if err := st.InitSchema(c.force); err != nil {
		return fail(err)
	}
	fmt.Printf("Database ready at %s\n", cfg.Database.Path)
	return subcommands.ExitSuccess
}
