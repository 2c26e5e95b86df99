// Package supplementalcmder provides commands for the local supplemental
// Q&A store.
package supplementalcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	storageutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/utils"
)

const supplementalLongDesc string = `Manage supplemental Q&A.

Supplemental entries are question and answer pairs kept next to the Intercom
snapshot and indexed with it on every rebuild. Entries are append-only.

Examples:
  ragbot supplemental list
  ragbot supplemental add --question "Where is the office?" --answer "Berlin"`

const supplementalShortDesc string = "Manage supplemental Q&A"

var supplementalFlags = []string{config.FlagSupplementalPath}

func NewSupplementalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplemental",
		Short: supplementalShortDesc,
		Long:  supplementalLongDesc,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// openStore resolves config for cmd and opens the storage driver.
func openStore(cmd *cobra.Command) (storage.Driver, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	cfg, err := config.LoadForCommand(cmd, configDir, supplementalFlags)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storageutils.NewDriver(&storageutils.NewDriverOpts{
		ProviderType:     cfg.Storage.Provider,
		SnapshotPath:     cfg.Storage.SnapshotPath,
		SupplementalPath: cfg.Storage.SupplementalPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage driver: %w", err)
	}
	return store, nil
}
