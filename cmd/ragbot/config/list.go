package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .ragbot/ directory. Tokens and API keys
are masked unless --show-secrets is given.

Examples:
  ragbot config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir, showSecrets)
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print tokens and API keys in full")

	return cmd
}

func runList(w io.Writer, configDir string, showSecrets bool) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "Using config file: %s\n\n", target)
	} else {
		fmt.Fprint(w, "No config file found. Using default config.\n\n")
	}

	keys := config.ValidConfigKeys()

	maxLen := 0
	for _, k := range keys {
		maxLen = max(maxLen, len(k))
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		switch {
		case value == "":
			fmt.Fprintf(w, "%-*s = <not set>\n", maxLen, key)
		case isSecret(key) && !showSecrets:
			fmt.Fprintf(w, "%-*s = ****\n", maxLen, key)
		default:
			fmt.Fprintf(w, "%-*s = %q\n", maxLen, key, value)
		}
	}

	return nil
}
