// Package ragbotcmder is the root ragbot command.
package ragbotcmder

import (
	"github.com/spf13/cobra"

	articlecmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/article"
	askcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/ask"
	configcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/config"
	fetchcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/fetch"
	rebuildcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/rebuild"
	servecmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/serve"
	snapshotcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/snapshot"
	statscmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/stats"
	supplementalcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/supplemental"
	versioncmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/version"
)

const ragbotLongDesc string = `ragbot answers questions from your Intercom help center.

It pulls published articles, merges them with a local supplemental Q&A store,
embeds everything into a vector index and answers questions by retrieving the
closest documents and handing them to a language model.

Run the server:
  ragbot serve                 Serve the HTTP API and build the index

Talk to a running server:
  ragbot ask "How do I reset my password?"
  ragbot rebuild               Rebuild the index
  ragbot stats                 Show query and rebuild counters

Manage content:
  ragbot fetch                 Pull articles into the snapshot
  ragbot supplemental add      Add a question and answer
  ragbot article create        Create an Intercom article`

const ragbotShortDesc string = "ragbot - help-center question answering"

func NewRagbotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ragbot",
		Short:         ragbotShortDesc,
		Long:          ragbotLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .ragbot config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(rebuildcmder.NewRebuildCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(fetchcmder.NewFetchCmd())
	cmd.AddCommand(supplementalcmder.NewSupplementalCmd())
	cmd.AddCommand(articlecmder.NewArticleCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(snapshotcmder.NewSnapshotCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
