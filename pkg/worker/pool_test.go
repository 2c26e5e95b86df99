package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragbotlogger "github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	testutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/utils/test"
)

// batchEmbedder records the size of every batch it is given.
type batchEmbedder struct {
	mu      sync.Mutex
	batches []int
}

func (b *batchEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (b *batchEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.batches = append(b.batches, len(texts))
	b.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (b *batchEmbedder) Close() error { return nil }

// gaugeEmbedder tracks the peak number of concurrent Embed calls.
type gaugeEmbedder struct {
	inflight atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
}

func (g *gaugeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-g.release
	return []float32{float32(len(text))}, nil
}

func (g *gaugeEmbedder) Close() error { return nil }

var _ = Describe("Worker Pool", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("requires an embedder", func() {
		_, err := NewPool(&Config{Logger: ragbotlogger.Nop()})
		Expect(err).To(HaveOccurred())
	})

	It("returns vectors in input order and embeds each text once", func() {
		embedder := testutils.NewMockEmbedder()
		texts := make([]string, 20)
		for i := range texts {
			texts[i] = fmt.Sprintf("doc-%d", i)
			embedder.Embeddings[texts[i]] = []float32{float32(i)}
		}

		wp, err := NewPool(&Config{Embedder: embedder, NumWorkers: 4, Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		vecs, err := wp.Embed(ctx, texts)
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs).To(HaveLen(20))
		for i := range texts {
			Expect(vecs[i]).To(Equal([]float32{float32(i)}))
			Expect(embedder.Calls(texts[i])).To(Equal(1))
		}
	})

	It("never runs more than NumWorkers embeddings at once", func() {
		embedder := &gaugeEmbedder{release: make(chan struct{})}
		wp, err := NewPool(&Config{Embedder: embedder, NumWorkers: 2, Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		done := make(chan error, 1)
		go func() {
			_, err := wp.Embed(ctx, []string{"a", "b", "c", "d", "e"})
			done <- err
		}()

		Eventually(embedder.inflight.Load).Should(Equal(int32(2)))
		close(embedder.release)
		Eventually(done).Should(Receive(BeNil()))
		Expect(embedder.peak.Load()).To(Equal(int32(2)))
	})

	It("splits batch embedders into BatchSize chunks", func() {
		embedder := &batchEmbedder{}
		wp, err := NewPool(&Config{Embedder: embedder, BatchSize: 3, Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		vecs, err := wp.Embed(ctx, []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "g"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs).To(Equal([][]float32{{1}, {2}, {3}, {4}, {5}, {6}, {1}}))
		Expect(embedder.batches).To(ConsistOf(3, 3, 1))
	})

	It("returns the first embedding error", func() {
		embedder := testutils.NewMockEmbedder()
		embedder.FailOn = "bad"

		wp, err := NewPool(&Config{Embedder: embedder, Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		_, err = wp.Embed(ctx, []string{"good", "bad", "fine"})
		Expect(err).To(MatchError(ContainSubstring("mock embedding failure for: bad")))
	})

	It("stops on context cancellation", func() {
		embedder := testutils.NewMockEmbedder()
		block := make(chan struct{})
		embedder.Block = block
		defer close(block)

		wp, err := NewPool(&Config{Embedder: embedder, NumWorkers: 1, Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		cctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := wp.Embed(cctx, []string{"a", "b"})
			done <- err
		}()

		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("rejects work after Close", func() {
		wp, err := NewPool(&Config{Embedder: testutils.NewMockEmbedder(), Logger: ragbotlogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		wp.Close()
		wp.Close()

		_, err = wp.Embed(ctx, []string{"a"})
		Expect(err).To(MatchError(ErrPoolClosed))
	})
})
