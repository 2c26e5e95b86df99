package supplementalcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

type addCommander struct {
	question string
	answer   string
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a question and answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec := storage.SupplementalRecord{Question: cmder.question, Answer: cmder.answer}
			if err := rec.Validate(); err != nil {
				return errors.New("both --question and --answer are required")
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := store.AppendSupplemental(ctx, rec); err != nil {
				return fmt.Errorf("saving supplemental record: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added. Rebuild to index it.\n", cliui.SuccessMark)
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, supplementalFlags)
	cmd.Flags().StringVarP(&cmder.question, "question", "q", "", "Question text")
	cmd.Flags().StringVar(&cmder.answer, "answer", "", "Answer text")

	return cmd
}
