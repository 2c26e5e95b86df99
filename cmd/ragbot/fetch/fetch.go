// Package fetchcmder provides the fetch command, which refreshes the article
// snapshot without rebuilding the index.
package fetchcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/fetcher"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	storageutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/utils"
)

type fetchCommander struct {
	debug bool
	cfg   *config.Config
}

const fetchLongDesc string = `Fetch every Intercom article and overwrite the snapshot.

Pages are followed until the API stops returning a next link. When a page fails
the articles gathered so far are still written and the command reports the
fetch as incomplete. The index is not rebuilt; run "ragbot rebuild" for that.

Examples:
  ragbot fetch
  INTERCOM_TOKEN=... ragbot fetch --snapshot data/info.json`

const fetchShortDesc string = "Fetch Intercom articles into the snapshot"

var fetchFlags = []string{
	config.FlagIntercomURL,
	config.FlagIntercomToken,
	config.FlagSnapshotPath,
}

func NewFetchCmd() *cobra.Command {
	cmder := &fetchCommander{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: fetchShortDesc,
		Long:  fetchLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, configDir, fetchFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddFlags(cmd, config.Registry, fetchFlags)

	return cmd
}

func (c *fetchCommander) run(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var log *slog.Logger
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithComponent("fetch"))
	} else {
		log = logger.Nop()
	}

	store, err := storageutils.NewDriver(&storageutils.NewDriverOpts{
		ProviderType:     c.cfg.Storage.Provider,
		SnapshotPath:     c.cfg.Storage.SnapshotPath,
		SupplementalPath: c.cfg.Storage.SupplementalPath,
	})
	if err != nil {
		return fmt.Errorf("creating storage driver: %w", err)
	}
	defer func() { _ = store.Close() }()

	client, err := intercom.NewClient(intercom.Config{
		BaseURL:   c.cfg.Intercom.BaseURL,
		Token:     c.cfg.Intercom.Token,
		RateLimit: c.cfg.Intercom.RateLimit,
	}, log)
	if err != nil {
		return fmt.Errorf("creating intercom client: %w", err)
	}

	var result *fetcher.Result
	err = cliui.Step(out, "Fetching articles from "+c.cfg.Intercom.BaseURL, func() error {
		var err error
		result, err = fetcher.New(client, store, log).Fetch(ctx)
		return err
	})
	if err != nil {
		return err
	}

	fields := []cliui.Field{
		{Key: "articles", Value: fmt.Sprint(len(result.Records))},
		{Key: "pages", Value: fmt.Sprint(result.Pages)},
		{Key: "snapshot", Value: c.cfg.Storage.SnapshotPath},
	}
	if !result.Complete {
		reason := "page limit reached"
		if result.PageErr != nil {
			reason = result.PageErr.Error()
		}
		fields = append(fields, cliui.Field{Key: "incomplete", Value: cliui.WarnStyle.Render(reason)})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cliui.Fields(fields))
	return nil
}
