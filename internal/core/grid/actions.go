package grid

// ActionKind names an affordance shown for a row or on the toolbar.
type ActionKind string

const (
	ActionAdd        ActionKind = "add"
	ActionEdit       ActionKind = "edit"
	ActionSave       ActionKind = "save"
	ActionCancel     ActionKind = "cancel"
	ActionDelete     ActionKind = "delete"
	ActionOpenDialog ActionKind = "edit-dialog"
)

// Capabilities gate which actions a grid offers. They are fixed for the
// lifetime of a controller.
type Capabilities struct {
	Addable   bool
	Editable  bool
	Deletable bool
}

// ResolveActions returns the row actions for state. Dialog mode collapses
// everything to a single open-dialog action.
func ResolveActions(state EditState, caps Capabilities, dialog bool) []ActionKind {
	switch {
	case dialog:
		return []ActionKind{ActionOpenDialog}
	case state.Editing() && caps.Editable:
		return []ActionKind{ActionSave, ActionCancel}
	case state.Editing():
		return []ActionKind{}
	}

	actions := []ActionKind{}
	if caps.Editable {
		actions = append(actions, ActionEdit)
	}
	if caps.Deletable {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// ToolbarActions returns the grid-level actions. Adding in dialog mode opens
// the dialog on a blank row.
func ToolbarActions(caps Capabilities) []ActionKind {
	if caps.Addable {
		return []ActionKind{ActionAdd}
	}
	return []ActionKind{}
}
