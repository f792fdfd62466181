package payload

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virusdecode/virusdecode/internal/attach"
	"github.com/virusdecode/virusdecode/internal/seq"
)

// errSource fails on open, standing in for an unreadable upload.
type errSource struct{}

func (errSource) Open() (io.ReadCloser, error) {
	return nil, errors.New("disk went away")
}

func TestBuild_SingleEntry_NoFiles_EmptyReference(t *testing.T) {
	entries := []seq.Entry{{ID: 1, Name: "Sequence1", Value: "ACGT", Visible: true}}

	p, err := Build(entries, nil, "")
	require.NoError(t, err)

	assert.Nil(t, p.ReferenceSequenceID)
	assert.Equal(t, map[string]string{"Sequence1": "ACGT"}, p.Sequences)
	assert.Equal(t, []FilePart{}, p.Files)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"referenceSequenceId":null,"sequences":{"Sequence1":"ACGT"},"files":[]}`, string(data))
}

func TestBuild_EmptyValueDropped_VisibilityIrrelevant(t *testing.T) {
	entries := []seq.Entry{
		{ID: 1, Name: "A", Value: "", Visible: true},
		{ID: 2, Name: "B", Value: "GGCC", Visible: false},
	}

	p, err := Build(entries, nil, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"B": "GGCC"}, p.Sequences)
}

func TestBuild_EmptyCollections_SerializeAsPresentKeys(t *testing.T) {
	p, err := Build(nil, nil, "")
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	// Both keys are always on the wire, even when empty.
	assert.JSONEq(t, `{"referenceSequenceId":null,"sequences":{},"files":[]}`, string(data))
}

func TestBuild_ReferenceID_NonEmpty(t *testing.T) {
	p, err := Build(nil, nil, "NC_045512.2")
	require.NoError(t, err)

	require.NotNil(t, p.ReferenceSequenceID)
	assert.Equal(t, "NC_045512.2", *p.ReferenceSequenceID)
}

func TestBuild_DuplicateNames_LastWins(t *testing.T) {
	entries := []seq.Entry{
		{ID: 1, Name: "spike", Value: "AAAA", Visible: true},
		{ID: 2, Name: "spike", Value: "TTTT", Visible: true},
	}

	var gotName, gotDropped, gotKept string
	p, err := Build(entries, nil, "", WithCollisionWarning(func(name, dropped, kept string) {
		gotName, gotDropped, gotKept = name, dropped, kept
	}))
	require.NoError(t, err)

	assert.Equal(t, "TTTT", p.Sequences["spike"])
	assert.Equal(t, "spike", gotName)
	assert.Equal(t, "AAAA", gotDropped)
	assert.Equal(t, "TTTT", gotKept)
}

func TestBuild_NormalizesEntryNames(t *testing.T) {
	// "é" as e + combining acute vs precomposed: both key the same
	// mapping slot after NFC normalization.
	entries := []seq.Entry{
		{ID: 1, Name: "séq", Value: "AAAA", Visible: true},
		{ID: 2, Name: "séq", Value: "TTTT", Visible: true},
	}

	p, err := Build(entries, nil, "")
	require.NoError(t, err)

	require.Len(t, p.Sequences, 1)
	assert.Equal(t, "TTTT", p.Sequences["séq"])
}

func TestBuild_Files_OrderAndLengthMatchStore(t *testing.T) {
	attachments := []attach.Attachment{
		{ID: "file-1", Name: "a.fasta", Source: attach.BytesSource{Data: []byte("ACGT")}},
		{ID: "file-2", Name: "b.fasta", Source: attach.BytesSource{Data: []byte("GGCC")}},
	}

	p, err := Build(nil, attachments, "")
	require.NoError(t, err)

	require.Len(t, p.Files, len(attachments))
	assert.Equal(t, FilePart{Name: "a.fasta", Content: "ACGT"}, p.Files[0])
	assert.Equal(t, FilePart{Name: "b.fasta", Content: "GGCC"}, p.Files[1])
}

func TestBuild_FileReadFailure_AbortsWithFileReadError(t *testing.T) {
	attachments := []attach.Attachment{
		{ID: "file-1", Name: "broken.fasta", Source: errSource{}},
	}

	p, err := Build(nil, attachments, "NC_045512.2")
	require.Error(t, err)
	assert.Nil(t, p)

	var fe *FileReadError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "broken.fasta", fe.Name)
	assert.True(t, IsFileReadError(err))
}

func TestBuild_MissingSource_IsFileReadError(t *testing.T) {
	attachments := []attach.Attachment{{ID: "file-1", Name: "ghost.fasta"}}

	_, err := Build(nil, attachments, "")
	assert.True(t, IsFileReadError(err))
}

func TestBuild_IsPure(t *testing.T) {
	entries := []seq.Entry{
		{ID: 1, Name: "Sequence1", Value: "ACGT", Visible: true},
		{ID: 2, Name: "Sequence2", Value: "", Visible: false},
	}
	attachments := []attach.Attachment{
		{ID: "file-1", Name: "a.fasta", Source: attach.BytesSource{Data: []byte("TTAA")}},
	}

	first, err := Build(entries, attachments, "NC_045512.2")
	require.NoError(t, err)
	second, err := Build(entries, attachments, "NC_045512.2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_WireFormat_Golden(t *testing.T) {
	entries := []seq.Entry{
		{ID: 1, Name: "Sequence1", Value: "ACGT", Visible: true},
		{ID: 2, Name: "variant", Value: "GGCCTT", Visible: false},
	}
	attachments := []attach.Attachment{
		{ID: "file-1", Name: "sample.fasta", Source: attach.BytesSource{Data: []byte("ACGTACGT\n")}},
	}

	p, err := Build(entries, attachments, "NC_045512.2")
	require.NoError(t, err)

	data, err := json.MarshalIndent(p, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "alignment_payload", data)
}
