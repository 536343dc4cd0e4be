package cmd

import (
	"context"
	"flag"

	"github.com/etnz/registre/renderer"
	"github.com/google/subcommands"
)

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show database statistics" }
func (*statsCmd) Usage() string {
	return `fms stats

  Shows the row count of every data table and the last successful load per
  source.
`
}

func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		return fail(err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	s, err := st.Stats()
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.RenderStats(renderer.NewStatsReport(st.Path(), s)))
	return subcommands.ExitSuccess
}
