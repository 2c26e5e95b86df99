package supplementalcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
)

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supplemental Q&A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			records, err := store.LoadSupplemental(ctx)
			if err != nil {
				return fmt.Errorf("loading supplemental records: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Fprintln(out, cliui.DimStyle.Render("No supplemental entries."))
				return nil
			}
			for i, r := range records {
				fmt.Fprintf(out, "%s %s\n", cliui.StepStyle.Render(fmt.Sprintf("%d.", i+1)), cliui.NameStyle.Render(r.Question))
				fmt.Fprintf(out, "   %s\n", r.Answer)
			}
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, supplementalFlags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")

	return cmd
}
