// Package configcmder provides the config command for managing persistent
// ragbot configuration stored in the .ragbot/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
)

const configLongDesc string = `Manage persistent ragbot configuration.

Configuration is stored as config.toml in the .ragbot/ directory and provides
default values for command flags. CLI flags and RAGBOT_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure, for example:
  intercom.base_url, intercom.token,
  storage.snapshot_path, storage.supplemental_path,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.model, embedding.dimensions,
  llm.provider, llm.model, qa.top_k, qa.prompt_template

Use subcommands to get, set, or list configuration values:
  ragbot config set <key> <value>    Set a configuration value
  ragbot config get <key>            Get a configuration value
  ragbot config list                 List all configuration values

Examples:
  ragbot config set llm.provider anthropic
  ragbot config set embedding.model nomic-embed-text
  ragbot config get vector_store.provider
  ragbot config list`

const configShortDesc string = "Manage persistent ragbot configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

// isSecret reports whether key holds a credential that list should mask.
func isSecret(key string) bool {
	return strings.HasSuffix(key, ".token") || strings.HasSuffix(key, ".api_key")
}
