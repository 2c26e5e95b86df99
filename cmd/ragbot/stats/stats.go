// Package statscmder provides the stats command.
package statscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/jskoiz/llama3-chatbot-with-rag/api/client"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
)

type statsCommander struct {
	asJSON    bool
	apiTarget string
}

const statsLongDesc string = `Show query and rebuild counters from a running ragbot server.

Example:
  ragbot stats
  ragbot stats --json`

const statsShortDesc string = "Show server statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, configDir, []string{config.FlagAPITarget})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.apiTarget = cfg.Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			snap, err := apiclient.New(cmder.apiTarget).Stats(ctx)
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if cmder.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			fmt.Fprint(out, cliui.Fields(Fields(snap)))
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, []string{config.FlagAPITarget})
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the raw JSON")

	return cmd
}

// Fields lays out a stats snapshot for display.
func Fields(s *stats.Snapshot) []cliui.Field {
	lastRebuild := ""
	if s.LastRebuild != nil {
		lastRebuild = s.LastRebuild.Local().Format(time.DateTime)
	}

	return []cliui.Field{
		{Key: "started", Value: s.StartTime.Local().Format(time.DateTime)},
		{Key: "uptime", Value: s.Uptime},
		{Key: "last rebuild", Value: lastRebuild},
		{Key: "queries", Value: fmt.Sprint(s.TotalQueries)},
		{Key: "articles pulled", Value: fmt.Sprint(s.ArticlesPulled)},
		{Key: "rebuilds", Value: fmt.Sprint(s.Rebuilds)},
		{Key: "failed rebuilds", Value: fmt.Sprint(s.FailedRebuilds)},
	}
}
