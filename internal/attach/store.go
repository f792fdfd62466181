// Package attach owns the ordered collection of uploaded file
// attachments.
//
// Attachments carry a stable synthetic id assigned at creation, in
// the same spirit as sequence entry ids. All mutations are keyed by
// id; positional access exists only for ordered display.
package attach

import "sync"

// Attachment is one uploaded file. Name defaults to the original
// filename and is user-editable; Source is read lazily at submission.
type Attachment struct {
	ID     string
	Name   string
	Source Source
}

// Upload describes one file selected for attachment.
type Upload struct {
	Name   string
	Source Source
}

// Store is the single owner of the attachment collection.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex. Batches resolve fully before their entries are
// visible; only content reads are deferred.
type Store struct {
	mu          sync.Mutex
	attachments []Attachment
	gen         IDGenerator
}

// NewStore creates an empty attachment store. A nil generator
// defaults to UUIDv7Generator.
func NewStore(gen IDGenerator) *Store {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Store{gen: gen}
}

// UploadBatch appends one attachment per upload, in the supplied
// order, after the existing collection. Prior attachments are never
// replaced. Returns copies of the new attachments with their ids.
func (s *Store) UploadBatch(uploads ...Upload) []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]Attachment, 0, len(uploads))
	for _, u := range uploads {
		a := Attachment{
			ID:     s.gen.Generate(),
			Name:   u.Name,
			Source: u.Source,
		}
		s.attachments = append(s.attachments, a)
		added = append(added, a)
	}
	return added
}

// Rename replaces the display name of the attachment with the given
// id. Returns false if no attachment has the id (e.g. it was removed
// while a rename was in progress).
func (s *Store) Rename(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.attachments {
		if s.attachments[i].ID == id {
			s.attachments[i].Name = name
			return true
		}
	}
	return false
}

// Remove deletes the attachment with the given id. Later attachments
// shift down one position; earlier ones are untouched. Returns false
// if no attachment has the id.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.attachments {
		if s.attachments[i].ID == id {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			return true
		}
	}
	return false
}

// Attachments returns a copy of the collection in upload order.
func (s *Store) Attachments() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Attachment, len(s.attachments))
	copy(out, s.attachments)
	return out
}

// At returns a copy of the attachment at the given display position.
func (s *Store) At(i int) (Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.attachments) {
		return Attachment{}, false
	}
	return s.attachments[i], true
}

// Len returns the number of attachments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attachments)
}
