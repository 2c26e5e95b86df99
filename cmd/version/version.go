// Package versioncmder prints the build metadata stamped into ragbot at
// release time.
package versioncmder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/utils"
)

// Info is the build metadata reported by `ragbot version --json`.
type Info struct {
	Version string `json:"version"`
	Sha     string `json:"sha"`
	BuiltAt string `json:"built_at"`
}

type VersionCommander struct {
	short   bool
	jsonOut bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the ragbot version",
		Long: `Print the ragbot version, commit and build time.

Examples:
  ragbot version
  ragbot version --short
  ragbot version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print as JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")

	return cmd
}

// Current returns the metadata of the running binary.
func Current() Info {
	return Info{Version: utils.Version, Sha: utils.Sha, BuiltAt: utils.Buildtime}
}

func (c *VersionCommander) run(w io.Writer) error {
	info := Current()

	switch {
	case c.short:
		_, err := fmt.Fprintln(w, info.Version)
		return err
	case c.jsonOut:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	_, err := fmt.Fprint(w, cliui.Fields([]cliui.Field{
		{Key: "version", Value: info.Version},
		{Key: "sha", Value: info.Sha},
		{Key: "built at", Value: info.BuiltAt},
	}))
	return err
}
