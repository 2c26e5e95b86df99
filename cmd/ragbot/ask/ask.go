// Package askcmder provides the ask command: one question, or a CSV of them,
// against a running ragbot server.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/jskoiz/llama3-chatbot-with-rag/api/client"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
)

type askCommander struct {
	file      string
	raw       bool
	apiTarget string
}

const askLongDesc string = `Ask the bot a question via the ragbot API.

With a question argument the answer is rendered as markdown. With --file the
first column of each CSV row is asked in turn and the results are written to
stdout as CSV with the columns question, response and time_taken. A header row
whose first cell is "question" is skipped.

Examples:
  ragbot ask "How do I reset my password?"
  ragbot ask "How do I reset my password?" --raw
  ragbot ask --file questions.csv > responses.csv`

const askShortDesc string = "Ask the bot a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, configDir, []string{config.FlagAPITarget})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.apiTarget = cfg.Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := apiclient.New(cmder.apiTarget)

			if cmder.file != "" {
				if len(args) > 0 {
					return errors.New("pass either a question or --file, not both")
				}
				return cmder.runFile(cmd.Context(), client, cmd.OutOrStdout())
			}

			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				return errors.New("no question provided")
			}
			return cmder.runOne(cmd.Context(), client, args[0], cmd.OutOrStdout())
		},
	}

	config.AddFlags(cmd, config.Registry, []string{config.FlagAPITarget})
	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "CSV file of questions to ask in turn")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) runOne(ctx context.Context, client *apiclient.Client, question string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := client.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("asking: %w", err)
	}

	text := resp.Response
	if !c.raw {
		if rendered, err := cliui.RenderMarkdown(text); err == nil {
			text = rendered
		}
	}

	fmt.Fprintln(out, text)
	fmt.Fprintln(out, cliui.DimStyle.Render(fmt.Sprintf("  %.2fs", resp.TimeTaken)))
	return nil
}

func (c *askCommander) runFile(ctx context.Context, client *apiclient.Client, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(c.file)
	if err != nil {
		return fmt.Errorf("opening questions: %w", err)
	}
	defer f.Close()

	questions, err := ReadQuestions(f)
	if err != nil {
		return err
	}

	return AskAll(ctx, client, questions, out)
}
