package grid

import (
	"maps"
	"sort"
)

// Mode is a row's interaction mode.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// EditState is the registry entry for one row. DiscardOnExit records that
// the last exit from edit mode threw away pending values.
type EditState struct {
	Mode          Mode
	DiscardOnExit bool
	FocusField    string
}

func (s EditState) Editing() bool {
	return s.Mode == ModeEdit
}

// Registry maps row ids to edit state. A missing entry means view mode.
type Registry struct {
	states map[ID]EditState
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[ID]EditState)}
}

func (r *Registry) Get(id ID) EditState {
	return r.states[id]
}

func (r *Registry) Set(id ID, state EditState) {
	r.states[id] = state
}

// Merge applies a batch of entries, overwriting existing ones.
func (r *Registry) Merge(states map[ID]EditState) {
	maps.Copy(r.states, states)
}

func (r *Registry) Delete(id ID) {
	delete(r.states, id)
}

// Editing returns the ids currently in edit mode, sorted.
func (r *Registry) Editing() []ID {
	var ids []ID
	for id, s := range r.states {
		if s.Editing() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Prune drops entries whose id keep rejects.
func (r *Registry) Prune(keep func(ID) bool) {
	maps.DeleteFunc(r.states, func(id ID, _ EditState) bool { return !keep(id) })
}

func (r *Registry) Len() int {
	return len(r.states)
}
