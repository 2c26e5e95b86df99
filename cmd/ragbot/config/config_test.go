package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/config"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := configcmder.NewConfigCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ragbot-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .ragbot dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".ragbot"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := execute("set", "llm.provider", "anthropic")
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(filepath.Join(tmpDir, ".ragbot", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "llm.provider")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := execute("set", "embedding.dimensions", "not-a-number")
			Expect(err).To(HaveOccurred())
		})

		It("masks secrets in its confirmation", func() {
			out, err := execute("set", "intercom.token", "tok_abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("tok_abc123"))
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "vector_store.provider", "qdrant")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "vector_store.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("qdrant"))
		})

		It("shows the default for an unset key", func() {
			out, err := execute("get", "llm.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("ollama"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("qa.top_k"))
		})

		It("masks tokens unless asked", func() {
			_, err := execute("set", "intercom.token", "tok_abc123")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("tok_abc123"))

			out, err = execute("list", "--show-secrets")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("tok_abc123"))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
