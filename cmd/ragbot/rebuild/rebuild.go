// Package rebuildcmder provides the rebuild command.
package rebuildcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/jskoiz/llama3-chatbot-with-rag/api/client"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
	pipelineutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline/utils"
)

type rebuildCommander struct {
	local     bool
	apiTarget string
	debug     bool

	cfg *config.Config
	out io.Writer
}

const rebuildLongDesc string = `Rebuild the vector store.

By default this asks a running ragbot server to rebuild its index, the same as
POST /rebuild_vectorstore. With --local the full pipeline runs in this process:
articles are fetched from Intercom, merged with the supplemental store, embedded
and indexed. A local rebuild is useful for checking provider settings; the index
it builds is discarded unless the vector store is persistent.

Examples:
  ragbot rebuild
  ragbot rebuild --api-target http://bot.internal:5001
  ragbot rebuild --local --vector-store-provider sqlite --vector-store-target ragbot.db`

const rebuildShortDesc string = "Rebuild the vector store"

var rebuildFlags = append([]string{config.FlagAPITarget}, config.ServeFlags...)

func NewRebuildCmd() *cobra.Command {
	cmder := &rebuildCommander{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: rebuildShortDesc,
		Long:  rebuildLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, configDir, rebuildFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			cmder.apiTarget = cfg.Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()

			if cmder.local {
				return cmder.runLocal(cmd.Context())
			}
			return cmder.runRemote(cmd.Context())
		},
	}

	config.AddFlags(cmd, config.Registry, rebuildFlags)
	cmd.Flags().BoolVar(&cmder.local, "local", false, "Run the rebuild in this process instead of on the server")

	return cmd
}

func (c *rebuildCommander) runRemote(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client := apiclient.New(c.apiTarget)
	var msg string
	err := cliui.Step(c.out, "Rebuilding vector store on "+c.apiTarget, func() error {
		var err error
		msg, err = client.Rebuild(ctx)
		return err
	})
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Errorf("rebuild failed (%d): %s", statusErr.Code, statusErr.Message)
		}
		return err
	}

	fmt.Fprintf(c.out, "\n  %s\n", cliui.DimStyle.Render(msg))
	return nil
}

func (c *rebuildCommander) runLocal(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Spinner output only, unless debugging.
	log := logger.Nop()
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithComponent("rebuild"))
	}

	var stack *pipelineutils.Stack
	if err := cliui.Step(c.out, "Connecting providers", func() error {
		var err error
		stack, err = pipelineutils.NewStack(ctx, c.cfg, log)
		return err
	}); err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	var result pipeline.RebuildResult
	if err := cliui.Step(c.out, "Fetching, embedding and indexing", func() error {
		result = stack.Coordinator.Rebuild(ctx)
		return result.Err
	}); err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, cliui.Fields(resultFields(result)))
	return nil
}

func resultFields(r pipeline.RebuildResult) []cliui.Field {
	fields := []cliui.Field{
		{Key: "fetched", Value: fmt.Sprint(r.Fetched)},
		{Key: "valid", Value: fmt.Sprint(r.Valid)},
		{Key: "invalid", Value: fmt.Sprint(r.Invalid)},
		{Key: "duration", Value: cliui.FormatDuration(r.Duration)},
	}
	if r.Generation != nil {
		fields = append(fields,
			cliui.Field{Key: "collection", Value: r.Generation.Collection},
			cliui.Field{Key: "documents", Value: fmt.Sprint(r.Generation.Documents)},
		)
	}
	return fields
}
