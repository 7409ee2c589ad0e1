package waveform

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/franz/track-notes/internal/util"
	"github.com/sourcegraph/conc/panics"
)

// Token identifies one analysis run. A result is only meaningful while its
// token is still the analyzer's current one.
type Token uint64

// Result is delivered once per analysis run that was not cancelled
type Result struct {
	Token  Token
	Source string
	Data   *Data
	// Err is set when decoding failed; Data then holds the synthetic envelope
	Err error
}

// Opener opens a source reference for decoding
type Opener func(ctx context.Context, source string) (io.ReadCloser, error)

// AnalyzerConfig holds analyzer configuration
type AnalyzerConfig struct {
	Decoder Decoder
	Open    Opener
	Budget  int
}

// Analyzer runs one waveform reduction at a time. Starting a new run cancels
// and invalidates the previous one.
type Analyzer struct {
	decoder Decoder
	open    Opener
	budget  int

	mu      sync.Mutex
	seq     Token
	current Token
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	results chan Result
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(cfg *AnalyzerConfig) *Analyzer {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.Open == nil {
		cfg.Open = OpenLocal
	}

	return &Analyzer{
		decoder: cfg.Decoder,
		open:    cfg.Open,
		budget:  cfg.Budget,
		results: make(chan Result, 4),
	}
}

// Results delivers finished runs. Consumers must check IsCurrent before
// applying a result.
func (a *Analyzer) Results() <-chan Result {
	return a.results
}

// Start begins analysing source and returns the run's token
func (a *Analyzer) Start(ctx context.Context, source string) Token {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.seq++
	tok := a.seq
	a.current = tok
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	util.DebugLog("Waveform analysis %d started for %s", tok, source)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		a.run(runCtx, tok, source)
	}()

	return tok
}

// Cancel stops the in-flight run, if any, and invalidates its token
func (a *Analyzer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.current = 0
}

// IsCurrent reports whether tok belongs to the latest, uncancelled run
func (a *Analyzer) IsCurrent(tok Token) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return tok != 0 && tok == a.current
}

// Close cancels any run and waits for its goroutine to exit
func (a *Analyzer) Close() {
	a.Cancel()
	a.wg.Wait()
}

func (a *Analyzer) run(ctx context.Context, tok Token, source string) {
	var data *Data
	var err error

	var pc panics.Catcher
	pc.Try(func() {
		data, err = a.analyze(ctx, source)
	})
	if r := pc.Recovered(); r != nil {
		err = &DecodeError{Source: source, Err: r.AsError()}
	}

	if ctx.Err() != nil {
		util.DebugLog("Waveform analysis %d for %s cancelled", tok, source)
		return
	}

	if err != nil {
		data = Synthetic(0, 0, a.budget)
	}

	select {
	case a.results <- Result{Token: tok, Source: source, Data: data, Err: err}:
	case <-ctx.Done():
	}
}

func (a *Analyzer) analyze(ctx context.Context, source string) (*Data, error) {
	if a.decoder == nil {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("%w: no decoder configured", util.ErrUnsupported)}
	}

	rc, err := a.open(ctx, source)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	defer rc.Close()

	pcm, err := a.decoder.Decode(ctx, rc)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	return Reduce(pcm.Samples, pcm.SampleRate, pcm.Duration(), a.budget), nil
}

// OpenLocal opens a local file, retrying transient errors. Remote sources
// are not fetched by the engine.
func OpenLocal(ctx context.Context, source string) (io.ReadCloser, error) {
	if util.IsRemoteSource(source) {
		return nil, fmt.Errorf("%w: remote source %s", util.ErrUnsupported, source)
	}
	return util.RetryableOpen(source, nil)
}
