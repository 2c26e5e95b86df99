// Package articlecmder provides Intercom article administration commands.
package articlecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
)

const articleLongDesc string = `Create and delete Intercom help-center articles.

Changes are made directly against the Intercom API. They reach the bot on the
next rebuild.

Examples:
  ragbot article create --title "Refunds" --body "<p>...</p>" --author-id 123
  ragbot article create --title "Refunds" --body-file refunds.html --author-id 123 --state published
  ragbot article delete 9876543`

const articleShortDesc string = "Manage Intercom articles"

var articleFlags = []string{config.FlagIntercomURL, config.FlagIntercomToken}

func NewArticleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: articleShortDesc,
		Long:  articleLongDesc,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newClient(cmd *cobra.Command) (*intercom.Client, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	cfg, err := config.LoadForCommand(cmd, configDir, articleFlags)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.Nop()
	if debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithComponent("article"))
	}

	client, err := intercom.NewClient(intercom.Config{
		BaseURL:   cfg.Intercom.BaseURL,
		Token:     cfg.Intercom.Token,
		RateLimit: cfg.Intercom.RateLimit,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating intercom client: %w", err)
	}
	return client, nil
}
