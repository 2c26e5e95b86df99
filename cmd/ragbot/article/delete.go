package articlecmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			id := args[0]
			if err := client.DeleteArticle(ctx, id); err != nil {
				if errors.Is(err, intercom.ErrArticleNotFound) {
					return fmt.Errorf("no article with id %s", id)
				}
				return fmt.Errorf("deleting article: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted article %s\n", cliui.SuccessMark, id)
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, articleFlags)

	return cmd
}
