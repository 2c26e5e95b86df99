// Package snapshotcmder provides commands for the article snapshot.
package snapshotcmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	storageutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/utils"
)

const snapshotShortDesc string = "Inspect the article snapshot"

var snapshotFlags = []string{config.FlagSnapshotPath}

func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: snapshotShortDesc,
	}
	cmd.AddCommand(newExportCmd())
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the snapshot as JSON to a file or stdout",
		Long: `Write the last fetched article snapshot as JSON.

Examples:
  ragbot snapshot export --out backup.json
  ragbot snapshot export | jq '.[].title'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, configDir, snapshotFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			store, err := storageutils.NewDriver(&storageutils.NewDriverOpts{
				ProviderType:     cfg.Storage.Provider,
				SnapshotPath:     cfg.Storage.SnapshotPath,
				SupplementalPath: cfg.Storage.SupplementalPath,
			})
			if err != nil {
				return fmt.Errorf("creating storage driver: %w", err)
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if out == "" {
				return Export(ctx, store, cmd.OutOrStdout())
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := Export(ctx, store, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s\n", cliui.SuccessMark, out)
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, snapshotFlags)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

// Export writes the snapshot held by store to w as indented JSON.
func Export(ctx context.Context, store storage.Driver, w io.Writer) error {
	records, err := store.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			return fmt.Errorf("%w: run ragbot fetch first", err)
		}
		return fmt.Errorf("loading snapshot: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
