package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/virusdecode/virusdecode/internal/api"
	"github.com/virusdecode/virusdecode/internal/attach"
	"github.com/virusdecode/virusdecode/internal/payload"
	"github.com/virusdecode/virusdecode/internal/seq"
)

// State of the submission life cycle.
type State int

const (
	// StateIdle means no submission has been issued yet.
	StateIdle State = iota
	// StateSubmitting means one request is in flight.
	StateSubmitting
	// StateSucceeded means the last submission produced a response
	// that was handed to the navigator.
	StateSucceeded
	// StateFailed means the last submission failed; the message is
	// available from ErrorMessage.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmitInFlight is returned when Submit is called while a
	// submission is outstanding. The in-flight submission is
	// unaffected; the new attempt is ignored, not queued.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrLookupInFlight is the reference-lookup analogue of
	// ErrSubmitInFlight.
	ErrLookupInFlight = errors.New("reference lookup already in flight")

	// ErrClosed is returned after Close; a torn-down pipeline accepts
	// no new work.
	ErrClosed = errors.New("pipeline is closed")
)

// Client issues the two backend requests. Implemented by api.Client.
type Client interface {
	LookupReference(ctx context.Context, sequenceID string) ([]api.Field, error)
	SubmitAlignment(ctx context.Context, p *payload.Payload) (json.RawMessage, error)
}

// Navigator receives the single forward transition on submission
// success. Implemented by router.Router.
type Navigator interface {
	Navigate(result json.RawMessage)
}

// Snapshot supplies the payload inputs at submit time: copies of both
// store collections plus the current reference id.
type Snapshot func() (entries []seq.Entry, attachments []attach.Attachment, referenceID string)

// Outcome is delivered exactly once per accepted submission.
type Outcome struct {
	State  State
	Result json.RawMessage
	Err    string
}

// Pipeline owns the submission and reference-lookup state machines.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex; response goroutines re-enter through the same
// mutex.
type Pipeline struct {
	mu        sync.Mutex
	client    Client
	nav       Navigator
	snapshot  Snapshot
	buildOpts []payload.Option

	state   State
	loading bool
	errMsg  string
	result  json.RawMessage
	gen     uint64
	closed  bool

	ref refLookup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBuildOptions forwards options (e.g. the collision warning hook)
// to every payload construction.
func WithBuildOptions(opts ...payload.Option) Option {
	return func(p *Pipeline) {
		p.buildOpts = opts
	}
}

// New creates an idle pipeline. The navigator may be nil when no
// forward transition is wanted (e.g. bare lookup commands).
func New(client Client, nav Navigator, snapshot Snapshot, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:   client,
		nav:      nav,
		snapshot: snapshot,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit builds the payload from a fresh snapshot and issues one
// alignment request. The loading flag is set before Submit returns.
//
// A payload construction failure (unreadable attachment) aborts
// before any request is sent and is returned directly, typed, so
// callers can tell it apart from transport failures; the pipeline
// still transitions to Failed with a user-visible message.
//
// On acceptance the returned channel delivers exactly one Outcome
// when the request settles, even if the pipeline was closed in the
// meantime (shared state is then left untouched).
func (p *Pipeline) Submit(ctx context.Context) (<-chan Outcome, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.state == StateSubmitting {
		p.mu.Unlock()
		slog.Debug("ignoring submit while one is in flight")
		return nil, ErrSubmitInFlight
	}
	p.state = StateSubmitting
	p.loading = true
	p.errMsg = ""
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	entries, attachments, referenceID := p.snapshot()
	pl, err := payload.Build(entries, attachments, referenceID, p.buildOpts...)
	if err != nil {
		p.mu.Lock()
		if gen == p.gen && !p.closed {
			p.loading = false
			p.state = StateFailed
			p.errMsg = userMessage(err)
		}
		p.mu.Unlock()
		slog.Warn("submission aborted before request", "error", err)
		return nil, err
	}

	slog.Info("submitting alignment request",
		"sequences", len(pl.Sequences),
		"files", len(pl.Files),
		"has_reference", pl.ReferenceSequenceID != nil,
	)

	done := make(chan Outcome, 1)
	go func() {
		result, err := p.client.SubmitAlignment(ctx, pl)
		done <- p.settle(gen, result, err)
	}()
	return done, nil
}

// settle applies the response to pipeline state unless it is stale,
// and always produces the per-call outcome.
func (p *Pipeline) settle(gen uint64, result json.RawMessage, err error) Outcome {
	var out Outcome
	if err != nil {
		out = Outcome{State: StateFailed, Err: userMessage(err)}
	} else {
		out = Outcome{State: StateSucceeded, Result: result}
	}

	p.mu.Lock()
	stale := p.closed || gen != p.gen
	if !stale {
		// Loading is cleared first so it is never observable as true
		// alongside a terminal state.
		p.loading = false
		if err != nil {
			p.state = StateFailed
			p.errMsg = out.Err
			slog.Warn("submission failed", "error", err)
		} else {
			p.state = StateSucceeded
			p.result = result
			slog.Info("submission succeeded", "response_bytes", len(result))
		}
	}
	nav := p.nav
	p.mu.Unlock()

	if stale {
		slog.Debug("dropping stale submission response", "gen", gen)
		return out
	}
	if err == nil && nav != nil {
		nav.Navigate(result)
	}
	return out
}

// State returns the submission machine's current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Loading reports whether a submission request is outstanding.
func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// ErrorMessage returns the user-visible message for the last failed
// submission, empty otherwise.
func (p *Pipeline) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// Result returns the last successful response body.
func (p *Pipeline) Result() (json.RawMessage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil, false
	}
	return p.result, true
}

// Close tears the pipeline down. Outstanding responses are dropped
// when they arrive; no new submissions or lookups are accepted.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	p.ref.gen++
}

// userMessage converts a failure into the string shown to the user.
// All errors are caught at this boundary; none propagate uncaught.
func userMessage(err error) string {
	var ae *api.Error
	switch {
	case payload.IsFileReadError(err):
		return "could not read an attached file: " + err.Error()
	case errors.As(err, &ae) && ae.Code == api.ErrCodeServer:
		return "server response error: " + ae.Status
	case errors.As(err, &ae) && ae.Code == api.ErrCodeMalformed:
		// Malformed responses read like server errors to the user.
		return "server response error: " + ae.Message
	default:
		return "request error: " + err.Error()
	}
}
