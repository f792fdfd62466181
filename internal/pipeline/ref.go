package pipeline

import (
	"context"
	"log/slog"

	"github.com/virusdecode/virusdecode/internal/api"
)

// RefState of the reference-lookup cycle.
type RefState int

const (
	// RefIdle means no lookup has been issued yet.
	RefIdle RefState = iota
	// RefLoading means one lookup is in flight.
	RefLoading
	// RefSucceeded means metadata fields are available.
	RefSucceeded
	// RefFailed means the last lookup failed; the error string is
	// stored in place of the metadata.
	RefFailed
)

func (s RefState) String() string {
	switch s {
	case RefIdle:
		return "idle"
	case RefLoading:
		return "loading"
	case RefSucceeded:
		return "succeeded"
	case RefFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RefOutcome is delivered exactly once per accepted lookup.
type RefOutcome struct {
	State  RefState
	Fields []api.Field
	Err    string
}

// refLookup is the reference-lookup half of the pipeline. It shares
// the pipeline mutex and is fully independent of the submission
// machine: a lookup never touches loading, state, or the navigator.
type refLookup struct {
	state  RefState
	fields []api.Field
	errMsg string
	gen    uint64
}

// LookupReference issues the one-shot metadata request for the given
// reference id. While a lookup is in flight further calls are
// rejected with ErrLookupInFlight and mutate nothing.
func (p *Pipeline) LookupReference(ctx context.Context, sequenceID string) (<-chan RefOutcome, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.ref.state == RefLoading {
		p.mu.Unlock()
		return nil, ErrLookupInFlight
	}
	p.ref.state = RefLoading
	p.ref.gen++
	gen := p.ref.gen
	p.mu.Unlock()

	slog.Debug("looking up reference metadata", "sequence_id", sequenceID)

	done := make(chan RefOutcome, 1)
	go func() {
		fields, err := p.client.LookupReference(ctx, sequenceID)
		done <- p.settleLookup(gen, fields, err)
	}()
	return done, nil
}

func (p *Pipeline) settleLookup(gen uint64, fields []api.Field, err error) RefOutcome {
	var out RefOutcome
	if err != nil {
		out = RefOutcome{State: RefFailed, Err: userMessage(err)}
	} else {
		out = RefOutcome{State: RefSucceeded, Fields: fields}
	}

	p.mu.Lock()
	stale := p.closed || gen != p.ref.gen
	if !stale {
		if err != nil {
			p.ref.state = RefFailed
			p.ref.errMsg = out.Err
			p.ref.fields = nil
			slog.Warn("reference lookup failed", "error", err)
		} else {
			p.ref.state = RefSucceeded
			p.ref.fields = fields
			p.ref.errMsg = ""
			slog.Info("reference lookup succeeded", "fields", len(fields))
		}
	}
	p.mu.Unlock()

	if stale {
		slog.Debug("dropping stale reference lookup response", "gen", gen)
	}
	return out
}

// RefLookupState returns the lookup machine's current state.
func (p *Pipeline) RefLookupState() RefState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ref.state
}

// Metadata returns a copy of the last successful lookup's fields,
// ordered by key.
func (p *Pipeline) Metadata() []api.Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.Field, len(p.ref.fields))
	copy(out, p.ref.fields)
	return out
}

// MetadataText returns the display string for the lookup result: the
// formatted fields on success, the stored error string on failure,
// empty otherwise.
func (p *Pipeline) MetadataText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ref.state == RefFailed {
		return p.ref.errMsg
	}
	return api.FormatFields(p.ref.fields)
}
