package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virusdecode/virusdecode/internal/payload"
)

func TestLookupReference_ReturnsFieldsOrderedByKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/inputSeq/reference", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "NC_045512.2", req["sequenceId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Length":"29903","Accession":"NC_045512.2","Organism":"SARS-CoV-2"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	fields, err := c.LookupReference(context.Background(), "NC_045512.2")
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Key: "Accession", Value: "NC_045512.2"},
		{Key: "Length", Value: "29903"},
		{Key: "Organism", Value: "SARS-CoV-2"},
	}, fields)
}

func TestLookupReference_NoContent_IsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.LookupReference(context.Background(), "bogus")
	require.Error(t, err)
	assert.True(t, IsServerError(err))
}

func TestLookupReference_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not","an","object"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.LookupReference(context.Background(), "NC_045512.2")
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
	assert.False(t, IsServerError(err))
}

func TestSubmitAlignment_ForwardsBodyUnparsed(t *testing.T) {
	const response = `{"alignment":{"Sequence1":"AC-GT"},"mutations":[]}`

	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inputSeq/alignment", r.URL.Path)
		received, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(response))
	}))
	defer srv.Close()

	p, err := payload.Build(nil, nil, "NC_045512.2")
	require.NoError(t, err)

	c := NewClient(srv.URL)
	result, err := c.SubmitAlignment(context.Background(), p)
	require.NoError(t, err)

	assert.JSONEq(t, response, string(result))
	// The wire body always carries all three top-level keys.
	assert.JSONEq(t, `{"referenceSequenceId":"NC_045512.2","sequences":{},"files":[]}`, string(received))
}

func TestSubmitAlignment_ServerError_KeepsStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "alignment failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := payload.Build(nil, nil, "")
	require.NoError(t, err)

	c := NewClient(srv.URL)
	_, err = c.SubmitAlignment(context.Background(), p)
	require.Error(t, err)
	require.True(t, IsServerError(err))

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Status, "500")
	assert.NotEmpty(t, ae.Error())
}

func TestSubmitAlignment_InvalidResponseJSON_IsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	p, err := payload.Build(nil, nil, "")
	require.NoError(t, err)

	c := NewClient(srv.URL)
	_, err = c.SubmitAlignment(context.Background(), p)
	assert.True(t, IsMalformedError(err))
}

func TestClient_TransportFailure_IsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := NewClient(srv.URL)
	_, err := c.LookupReference(context.Background(), "NC_045512.2")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.False(t, IsServerError(err))
}

func TestFormatFields(t *testing.T) {
	fields := []Field{
		{Key: "Accession", Value: "NC_045512.2"},
		{Key: "Organism", Value: "SARS-CoV-2"},
	}
	assert.Equal(t, "Accession: NC_045512.2\nOrganism: SARS-CoV-2", FormatFields(fields))
	assert.Equal(t, "", FormatFields(nil))
}
