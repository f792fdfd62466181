// Package router holds the result-viewer tab selection and the
// transition state handed over by the submission pipeline.
package router

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Tab identifies one of the result views. Exactly one is active at a
// time.
type Tab int

const (
	// TabAlignment is the initial tab.
	TabAlignment Tab = iota
	// TabMRNADesign shows the mRNA design view.
	TabMRNADesign
	// TabViewer3D shows the 3D molecular viewer.
	TabViewer3D
)

func (t Tab) String() string {
	switch t {
	case TabAlignment:
		return "alignment"
	case TabMRNADesign:
		return "mrna-design"
	case TabViewer3D:
		return "3d-viewer"
	default:
		return "unknown"
	}
}

// Tabs returns all tabs in display order.
func Tabs() []Tab {
	return []Tab{TabAlignment, TabMRNADesign, TabViewer3D}
}

// ParseTab converts a tab name back to its Tab value.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs() {
		if t.String() == s {
			return t, nil
		}
	}
	return TabAlignment, fmt.Errorf("unknown tab %q", s)
}

// Router exposes the tab-selection state machine that viewer
// collaborators render against.
//
// The transition state is the opaque server response carried forward
// by the pipeline, or absent when the viewer is entered without a
// prior submission. It is read-only shared context for all three
// tabs: selecting a tab never discards or refetches it.
type Router struct {
	mu     sync.Mutex
	active Tab
	result json.RawMessage
	has    bool
}

// New creates a router on the alignment tab with no transition state.
func New() *Router {
	return &Router{active: TabAlignment}
}

// Navigate records the transition state. Implements the pipeline's
// Navigator; called at most once per successful submission.
func (r *Router) Navigate(result json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = result
	r.has = true
}

// SelectTab activates a tab. Pure assignment: no side effects on the
// transition state.
func (r *Router) SelectTab(t Tab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = t
}

// Active returns the currently selected tab.
func (r *Router) Active() Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Result returns the transition state, reporting false when the
// viewer was entered without a prior submission.
func (r *Router) Result() (json.RawMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.has
}
