package main

import (
	"os"

	ragbotcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot"
)

func main() {
	cmd := ragbotcmder.NewRagbotCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
