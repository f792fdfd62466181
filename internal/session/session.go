// Package session is the composition root: it owns the sequence
// store, the attachment store, the submission pipeline, the result
// router, and the session journal, and is the single place they are
// wired together. No component holds implicit global state.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/virusdecode/virusdecode/internal/attach"
	"github.com/virusdecode/virusdecode/internal/journal"
	"github.com/virusdecode/virusdecode/internal/payload"
	"github.com/virusdecode/virusdecode/internal/pipeline"
	"github.com/virusdecode/virusdecode/internal/router"
	"github.com/virusdecode/virusdecode/internal/seq"
)

// Session wires the editor stores to the submission pipeline and the
// result router. Mutations go through the session so they are
// journaled; the stores remain the sole owners of their collections.
type Session struct {
	Sequences *seq.Store
	Files     *attach.Store
	Pipeline  *pipeline.Pipeline
	Router    *router.Router

	mu          sync.Mutex
	referenceID string

	journal *journal.Journal
}

type options struct {
	journalDSN string
	idGen      attach.IDGenerator
	buildOpts  []payload.Option
}

// Option configures a Session.
type Option func(*options)

// WithJournalDSN overrides the journal location. The default
// ":memory:" journal is discarded with the session.
func WithJournalDSN(dsn string) Option {
	return func(o *options) {
		o.journalDSN = dsn
	}
}

// WithIDGenerator overrides the attachment id generator (tests).
func WithIDGenerator(gen attach.IDGenerator) Option {
	return func(o *options) {
		o.idGen = gen
	}
}

// WithBuildOptions forwards payload build options, e.g. the
// name-collision warning hook.
func WithBuildOptions(opts ...payload.Option) Option {
	return func(o *options) {
		o.buildOpts = opts
	}
}

// New creates a fully wired session against the given backend client.
func New(client pipeline.Client, opts ...Option) (*Session, error) {
	o := options{journalDSN: journal.MemoryDSN}
	for _, opt := range opts {
		opt(&o)
	}

	jr, err := journal.Open(o.journalDSN)
	if err != nil {
		return nil, fmt.Errorf("open session journal: %w", err)
	}

	s := &Session{
		Sequences: seq.NewStore(),
		Files:     attach.NewStore(o.idGen),
		Router:    router.New(),
		journal:   jr,
	}
	s.Pipeline = pipeline.New(client, s.Router, s.snapshot,
		pipeline.WithBuildOptions(o.buildOpts...))
	return s, nil
}

// Close tears the session down: outstanding responses become no-ops
// and the journal is released.
func (s *Session) Close() error {
	s.Pipeline.Close()
	return s.journal.Close()
}

// snapshot feeds the payload builder copies of both collections plus
// the current reference id.
func (s *Session) snapshot() ([]seq.Entry, []attach.Attachment, string) {
	s.mu.Lock()
	ref := s.referenceID
	s.mu.Unlock()
	return s.Sequences.Entries(), s.Files.Attachments(), ref
}

// record journals an event; journal failures are logged and do not
// fail the mutation they describe.
func (s *Session) record(ctx context.Context, kind journal.Kind, detail string) {
	if err := s.journal.Record(ctx, kind, detail); err != nil {
		slog.Warn("journal write failed", "kind", kind, "error", err)
	}
}

// SetReferenceID replaces the reference sequence id.
func (s *Session) SetReferenceID(ctx context.Context, id string) {
	s.mu.Lock()
	s.referenceID = id
	s.mu.Unlock()
	s.record(ctx, journal.KindReferenceSet, fmt.Sprintf("id=%q", id))
}

// ReferenceID returns the current reference sequence id.
func (s *Session) ReferenceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referenceID
}

// AddSequence appends a new default entry.
func (s *Session) AddSequence(ctx context.Context) seq.Entry {
	e := s.Sequences.Add()
	s.record(ctx, journal.KindSequenceAdded, fmt.Sprintf("id=%d name=%q", e.ID, e.Name))
	return e
}

// RenameSequence renames the entry with the given id.
func (s *Session) RenameSequence(ctx context.Context, id int, name string) bool {
	ok := s.Sequences.Rename(id, name)
	if ok {
		s.record(ctx, journal.KindSequenceRenamed, fmt.Sprintf("id=%d name=%q", id, name))
	}
	return ok
}

// SetSequenceValue replaces the entry's sequence text.
func (s *Session) SetSequenceValue(ctx context.Context, id int, value string) bool {
	ok := s.Sequences.SetValue(id, value)
	if ok {
		s.record(ctx, journal.KindSequenceEdited, fmt.Sprintf("id=%d bytes=%d", id, len(value)))
	}
	return ok
}

// ToggleSequenceVisible flips the entry's presentation flag.
func (s *Session) ToggleSequenceVisible(ctx context.Context, id int) (visible, ok bool) {
	visible, ok = s.Sequences.ToggleVisible(id)
	if ok {
		s.record(ctx, journal.KindSequenceToggled, fmt.Sprintf("id=%d visible=%t", id, visible))
	}
	return visible, ok
}

// RemoveSequence deletes the entry; its id is never reused.
func (s *Session) RemoveSequence(ctx context.Context, id int) bool {
	ok := s.Sequences.Remove(id)
	if ok {
		s.record(ctx, journal.KindSequenceRemoved, fmt.Sprintf("id=%d", id))
	}
	return ok
}

// AttachFiles appends one attachment per upload, in order.
func (s *Session) AttachFiles(ctx context.Context, uploads ...attach.Upload) []attach.Attachment {
	added := s.Files.UploadBatch(uploads...)
	s.record(ctx, journal.KindFilesAttached, fmt.Sprintf("count=%d", len(added)))
	return added
}

// RenameFile renames the attachment with the given id.
func (s *Session) RenameFile(ctx context.Context, id, name string) bool {
	ok := s.Files.Rename(id, name)
	if ok {
		s.record(ctx, journal.KindFileRenamed, fmt.Sprintf("id=%s name=%q", id, name))
	}
	return ok
}

// RemoveFile deletes the attachment with the given id.
func (s *Session) RemoveFile(ctx context.Context, id string) bool {
	ok := s.Files.Remove(id)
	if ok {
		s.record(ctx, journal.KindFileRemoved, fmt.Sprintf("id=%s", id))
	}
	return ok
}

// LookupReference fires the one-shot metadata request for the current
// reference id.
func (s *Session) LookupReference(ctx context.Context) (<-chan pipeline.RefOutcome, error) {
	id := s.ReferenceID()
	done, err := s.Pipeline.LookupReference(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, journal.KindReferenceLookup, fmt.Sprintf("id=%q", id))
	return done, nil
}

// Submit snapshots the stores and drives one submission through the
// pipeline. The returned channel delivers the journaled outcome.
func (s *Session) Submit(ctx context.Context) (<-chan pipeline.Outcome, error) {
	inner, err := s.Pipeline.Submit(ctx)
	if err != nil {
		s.record(ctx, journal.KindSubmission, fmt.Sprintf("state=rejected error=%q", err))
		return nil, err
	}

	out := make(chan pipeline.Outcome, 1)
	go func() {
		o := <-inner
		s.record(ctx, journal.KindSubmission, fmt.Sprintf("state=%s", o.State))
		out <- o
	}()
	return out, nil
}

// Trace returns the session journal in seq order.
func (s *Session) Trace(ctx context.Context) ([]journal.Event, error) {
	return s.journal.Events(ctx)
}

// ApplyInput loads a declarative session file into the stores. The
// pristine default entry is reused for the first input sequence so a
// loaded session matches what the same edits would have produced
// interactively.
func (s *Session) ApplyInput(ctx context.Context, in *Input) error {
	if in == nil {
		return nil
	}

	if in.ReferenceSequenceID != "" {
		s.SetReferenceID(ctx, in.ReferenceSequenceID)
	}

	for i, is := range in.Sequences {
		var id int
		if i == 0 && s.pristineDefault() {
			id = 1
		} else {
			id = s.AddSequence(ctx).ID
		}
		if !s.RenameSequence(ctx, id, is.Name) || !s.SetSequenceValue(ctx, id, is.Value) {
			return fmt.Errorf("apply sequence %q: entry %d vanished", is.Name, id)
		}
	}

	uploads := make([]attach.Upload, 0, len(in.Files))
	for _, f := range in.Files {
		uploads = append(uploads, attach.Upload{
			Name:   f.Name,
			Source: attach.PathSource{Path: f.Path},
		})
	}
	if len(uploads) > 0 {
		s.AttachFiles(ctx, uploads...)
	}
	return nil
}

func (s *Session) pristineDefault() bool {
	entries := s.Sequences.Entries()
	return len(entries) == 1 &&
		entries[0].ID == 1 &&
		entries[0].Name == "Sequence1" &&
		entries[0].Value == ""
}
