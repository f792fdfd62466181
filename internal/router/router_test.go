package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_InitialState(t *testing.T) {
	r := New()

	assert.Equal(t, TabAlignment, r.Active())
	_, ok := r.Result()
	assert.False(t, ok, "no transition state before a submission")
}

func TestRouter_SelectTab_DoesNotTouchResult(t *testing.T) {
	r := New()
	r.Navigate(json.RawMessage(`{"alignment":{}}`))

	for _, tab := range Tabs() {
		r.SelectTab(tab)
		assert.Equal(t, tab, r.Active())

		result, ok := r.Result()
		require.True(t, ok)
		assert.JSONEq(t, `{"alignment":{}}`, string(result))
	}
}

func TestRouter_Navigate_RecordsTransitionState(t *testing.T) {
	r := New()
	r.Navigate(json.RawMessage(`{"mutations":[]}`))

	result, ok := r.Result()
	require.True(t, ok)
	assert.JSONEq(t, `{"mutations":[]}`, string(result))
	// Navigation never changes the selected tab.
	assert.Equal(t, TabAlignment, r.Active())
}

func TestParseTab(t *testing.T) {
	for _, tab := range Tabs() {
		got, err := ParseTab(tab.String())
		require.NoError(t, err)
		assert.Equal(t, tab, got)
	}

	_, err := ParseTab("heatmap")
	assert.Error(t, err)
}
