package qa

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Fixed texts returned to callers in place of errors.
const (
	InitializationErrorText = "Initialization error: Vector store not available. Check log for details."
	QueryErrorText          = "An error occurred while processing the query."
	NoResultFieldText       = "No result field found in response."
	InsufficientInfoText    = "I apologize, but I don't have enough information to provide a helpful answer."
)

// ChainSource yields the runner of the active generation and the func that
// ends the read, or nil when no generation has been built. The runner stays
// usable until release is called.
type ChainSource interface {
	ActiveRunner() (runner Runner, release func())
}

// QueryRecorder is notified of every answered question.
type QueryRecorder interface {
	RecordQuery()
}

// Response is what a caller sees for a question.
type Response struct {
	Text    string  `json:"response"`
	Latency float64 `json:"time_taken"`
}

// Answerer answers questions against whatever generation is active when the
// question arrives.
type Answerer struct {
	source   ChainSource
	recorder QueryRecorder
	logger   *slog.Logger
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer)

// WithQueryRecorder counts answered questions on r.
func WithQueryRecorder(r QueryRecorder) AnswererOption {
	return func(a *Answerer) {
		a.recorder = r
	}
}

// NewAnswerer creates an Answerer reading from source.
func NewAnswerer(source ChainSource, logger *slog.Logger, opts ...AnswererOption) *Answerer {
	a := &Answerer{
		source: source,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer never fails: errors are logged and mapped to fixed texts with zero
// latency. The runner is acquired once and held until the answer is ready,
// so a concurrent rebuild can neither change nor drop it mid-question.
func (a *Answerer) Answer(ctx context.Context, question string) Response {
	if a.recorder != nil {
		a.recorder.RecordQuery()
	}

	runner, release := a.source.ActiveRunner()
	if runner == nil {
		a.logger.Error("query received before any index was built", "question", question)
		return Response{Text: InitializationErrorText}
	}
	if release != nil {
		defer release()
	}

	start := time.Now()
	result, err := run(ctx, runner, question)
	latency := time.Since(start).Seconds()
	if err != nil {
		a.logger.Error("error processing query", "question", question, "error", err)
		return Response{Text: QueryErrorText}
	}

	text := AnswerText(result)
	if text == "" {
		text = InsufficientInfoText
	}

	a.logger.Info("query answered", "question", question, "time_taken", latency)
	return Response{Text: text, Latency: latency}
}

func run(ctx context.Context, runner Runner, question string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chain panicked: %v", r)
		}
	}()
	return runner.Run(ctx, question)
}
