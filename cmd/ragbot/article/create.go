package articlecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
)

type createCommander struct {
	title       string
	description string
	body        string
	bodyFile    string
	authorID    int64
	state       string
}

func newCreateCmd() *cobra.Command {
	cmder := &createCommander{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return cmder.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			article, err := cmder.article()
			if err != nil {
				return err
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			created, err := client.CreateArticle(ctx, article)
			if err != nil {
				return fmt.Errorf("creating article: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Created article\n\n", cliui.SuccessMark)
			fmt.Fprint(cmd.OutOrStdout(), cliui.Fields([]cliui.Field{
				{Key: "id", Value: created.ID},
				{Key: "title", Value: created.Title},
				{Key: "state", Value: created.State},
				{Key: "url", Value: created.URL},
			}))
			return nil
		},
	}

	config.AddFlags(cmd, config.Registry, articleFlags)
	cmd.Flags().StringVar(&cmder.title, "title", "", "Article title")
	cmd.Flags().StringVar(&cmder.description, "description", "", "Article description")
	cmd.Flags().StringVar(&cmder.body, "body", "", "Article body (HTML)")
	cmd.Flags().StringVar(&cmder.bodyFile, "body-file", "", "Read the article body from a file")
	cmd.Flags().Int64Var(&cmder.authorID, "author-id", 0, "Intercom admin id of the author")
	cmd.Flags().StringVar(&cmder.state, "state", "draft", "Article state (draft, published)")

	return cmd
}

func (c *createCommander) validate() error {
	if strings.TrimSpace(c.title) == "" {
		return errors.New("--title is required")
	}
	if c.body != "" && c.bodyFile != "" {
		return errors.New("use either --body or --body-file, not both")
	}
	if c.body == "" && c.bodyFile == "" {
		return errors.New("--body or --body-file is required")
	}
	if c.authorID <= 0 {
		return errors.New("--author-id is required")
	}
	switch c.state {
	case "draft", "published":
	default:
		return fmt.Errorf("invalid --state %q (want draft or published)", c.state)
	}
	return nil
}

func (c *createCommander) article() (intercom.NewArticle, error) {
	body := c.body
	if c.bodyFile != "" {
		data, err := os.ReadFile(c.bodyFile)
		if err != nil {
			return intercom.NewArticle{}, fmt.Errorf("reading body file: %w", err)
		}
		body = string(data)
	}

	return intercom.NewArticle{
		Title:       c.title,
		Description: c.description,
		Body:        body,
		AuthorID:    c.authorID,
		State:       c.state,
	}, nil
}
