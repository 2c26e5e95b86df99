package versioncmder_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/version"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/utils"
)

func execute(args ...string) (string, error) {
	cmd := versioncmder.NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("version", func() {
	It("prints the version, sha and build time", func() {
		out, err := execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("version"))
		Expect(out).To(ContainSubstring(utils.Version))
		Expect(out).To(ContainSubstring(utils.Sha))
		Expect(out).To(ContainSubstring("built at"))
	})

	It("prints only the version with --short", func() {
		out, err := execute("--short")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(utils.Version + "\n"))
	})

	It("prints JSON with --json", func() {
		out, err := execute("--json")
		Expect(err).NotTo(HaveOccurred())

		var info versioncmder.Info
		Expect(json.Unmarshal([]byte(out), &info)).To(Succeed())
		Expect(info).To(Equal(versioncmder.Current()))
	})

	It("refuses --short together with --json", func() {
		_, err := execute("--short", "--json")
		Expect(err).To(HaveOccurred())
	})
})
