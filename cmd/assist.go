package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/registre/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

func (*AssistCmd) Name() string { return "assist" }

func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }

func (*AssistCmd) Usage() string {
	return `assist:
  Start an interactive session with the AI assistant.
`
}

func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
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

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	researcher := agent.NewResearcher()
	analyst := agent.NewAnalyst(st)
	a := agent.New(os.Stdout, os.Stdin, researcher, analyst)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
