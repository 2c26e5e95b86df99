package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragbotlogger "github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/watch"
)

type countingRebuilder struct {
	calls atomic.Int32
}

func (c *countingRebuilder) Rebuild(context.Context) pipeline.RebuildResult {
	c.calls.Add(1)
	return pipeline.RebuildResult{}
}

var _ = Describe("Watcher", func() {
	var (
		dir       string
		path      string
		rebuilder *countingRebuilder
		cancel    context.CancelFunc
		done      chan error
	)

	start := func() {
		w, err := watch.New(path, rebuilder, ragbotlogger.Nop(), watch.WithDebounce(50*time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() {
			done <- w.Run(ctx)
		}()
		// give the watcher time to register the directory
		time.Sleep(100 * time.Millisecond)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "supplemental_info.json")
		Expect(os.WriteFile(path, []byte("[]"), 0o600)).To(Succeed())
		rebuilder = &countingRebuilder{}
		cancel = nil
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
			Eventually(done).Should(Receive(BeNil()))
		}
	})

	It("requires a path and a rebuilder", func() {
		_, err := watch.New("", rebuilder, ragbotlogger.Nop())
		Expect(err).To(HaveOccurred())

		_, err = watch.New(path, nil, ragbotlogger.Nop())
		Expect(err).To(HaveOccurred())
	})

	It("coalesces a burst of writes into one rebuild", func() {
		start()

		for i := range 5 {
			Expect(os.WriteFile(path, []byte(`[{"question":"q","answer":"a`+string(rune('0'+i))+`"}]`), 0o600)).To(Succeed())
		}

		Eventually(rebuilder.calls.Load).Should(Equal(int32(1)))
		Consistently(rebuilder.calls.Load, 200*time.Millisecond).Should(Equal(int32(1)))
	})

	It("ignores other files in the directory", func() {
		start()

		Expect(os.WriteFile(filepath.Join(dir, "info.json"), []byte("[]"), 0o600)).To(Succeed())

		Consistently(rebuilder.calls.Load, 300*time.Millisecond).Should(BeZero())
	})

	It("picks up a file replaced by rename", func() {
		start()

		tmp := filepath.Join(dir, "supplemental_info.json.tmp")
		Expect(os.WriteFile(tmp, []byte("[]"), 0o600)).To(Succeed())
		Expect(os.Rename(tmp, path)).To(Succeed())

		Eventually(rebuilder.calls.Load).Should(BeNumerically(">=", 1))
	})
})
