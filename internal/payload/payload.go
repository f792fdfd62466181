// Package payload builds the alignment submission body from a
// snapshot of the two editor stores and the reference id.
//
// Build is a pure function: identical inputs produce structurally
// identical payloads, and the only failure mode is an unreadable
// attachment. The wire contract always includes both the sequences
// mapping and the files list, empty when nothing qualifies.
package payload

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"

	"github.com/virusdecode/virusdecode/internal/attach"
	"github.com/virusdecode/virusdecode/internal/seq"
)

// FilePart is one fully read attachment on the wire.
type FilePart struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Payload is the body of POST /inputSeq/alignment.
//
// ReferenceSequenceID serializes as null when the field was left
// empty. Sequences and Files are independently optional but always
// present as keys: an empty collection serializes as {} or [],
// never as absent.
type Payload struct {
	ReferenceSequenceID *string           `json:"referenceSequenceId"`
	Sequences           map[string]string `json:"sequences"`
	Files               []FilePart        `json:"files"`
}

// FileReadError reports that an attachment's content could not be
// read. It aborts payload construction before any request is issued
// and is distinguishable from transport and server errors.
type FileReadError struct {
	Name string // attachment display name
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read attachment %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// IsFileReadError reports whether err is a FileReadError.
// Uses errors.As to handle wrapped errors.
func IsFileReadError(err error) bool {
	var fe *FileReadError
	return errors.As(err, &fe)
}

// CollisionFunc is notified when two non-empty entries share a name
// and the later one (by store order) overwrites the earlier one in
// the sequences mapping. Last-wins is the default policy; callers
// that want to enforce uniqueness can escalate from the hook.
type CollisionFunc func(name, dropped, kept string)

// Option configures a Build call.
type Option func(*builder)

type builder struct {
	onCollision CollisionFunc
}

// WithCollisionWarning installs a hook invoked on every silent
// name-collision overwrite.
func WithCollisionWarning(fn CollisionFunc) Option {
	return func(b *builder) {
		b.onCollision = fn
	}
}

// Build assembles the wire payload.
//
// Rules:
//   - every attachment is read fully; the first read failure aborts
//     with a FileReadError
//   - entries with an empty value are dropped regardless of
//     visibility
//   - entry names are NFC-normalized before keying the mapping
//   - duplicate names resolve last-wins, reported via the collision
//     hook when installed
//   - referenceID maps to null when empty
func Build(entries []seq.Entry, attachments []attach.Attachment, referenceID string, opts ...Option) (*Payload, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	sequences := make(map[string]string)
	for _, e := range entries {
		if e.Value == "" {
			continue
		}
		name := norm.NFC.String(e.Name)
		if prev, ok := sequences[name]; ok && b.onCollision != nil {
			b.onCollision(name, prev, e.Value)
		}
		sequences[name] = e.Value
	}

	files := make([]FilePart, 0, len(attachments))
	for _, a := range attachments {
		content, err := readSource(a.Source)
		if err != nil {
			return nil, &FileReadError{Name: a.Name, Err: err}
		}
		files = append(files, FilePart{Name: a.Name, Content: content})
	}

	var ref *string
	if referenceID != "" {
		id := referenceID
		ref = &id
	}

	return &Payload{
		ReferenceSequenceID: ref,
		Sequences:           sequences,
		Files:               files,
	}, nil
}

func readSource(src attach.Source) (string, error) {
	if src == nil {
		return "", errors.New("attachment has no content source")
	}
	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
