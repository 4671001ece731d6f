package domain

// ActionType is the discriminant carried in the "type" field of every action.
type ActionType string

const (
	ActionSelect        ActionType = "Select"
	ActionSelectAndDrag ActionType = "SelectAndDrag"
	ActionToolAction    ActionType = "ToolAction"
	ActionSet           ActionType = "Set"
	ActionFormat        ActionType = "Format"
	ActionRead          ActionType = "Read"
	ActionTellUser      ActionType = "TellUser"
	ActionTerminate     ActionType = "Terminate"
)

// Action is one instruction of a Batch.
// The set of implementations is closed: only the types in this file satisfy it.
type Action interface {
	Type() ActionType
	isAction()
}

// Batch is the ordered list of actions executed in one round.
type Batch []Action

// Select replaces the current selection.
type Select struct {
	Span Span
	Reg  string
}

// SelectAndDrag re-selects and fills the region with the relative formula of its top-left cell.
type SelectAndDrag struct {
	Span Span
	Reg  string
}

// ToolAction runs a clipboard tool (copy, paste, pasteasvalues, delete) over the selection.
type ToolAction struct {
	Tool string
	Reg  string
}

// Set writes Text (a literal, or a formula when it starts with "=") into the selection.
type Set struct {
	Text string
	Reg  string
}

// Format applies one style operation to the selection.
type Format struct {
	Style        string
	Color        string
	Size         int
	Alignment    string
	Border       *Border
	Wrap         *bool
	NumberFormat string
	Reg          string
}

// Read collects the values of its own region into the read results.
type Read struct {
	Span Span
	Reg  string
}

// TellUser adds a message for the user.
type TellUser struct {
	Message string
}

// Terminate stops the batch.
type Terminate struct{}

// Unknown keeps an action whose type is not recognised so it can be reported and skipped.
type Unknown struct {
	Kind string
}

func (Select) Type() ActionType        { return ActionSelect }
func (SelectAndDrag) Type() ActionType { return ActionSelectAndDrag }
func (ToolAction) Type() ActionType    { return ActionToolAction }
func (Set) Type() ActionType           { return ActionSet }
func (Format) Type() ActionType        { return ActionFormat }
func (Read) Type() ActionType          { return ActionRead }
func (TellUser) Type() ActionType      { return ActionTellUser }
func (Terminate) Type() ActionType     { return ActionTerminate }
func (u Unknown) Type() ActionType     { return ActionType(u.Kind) }

func (Select) isAction()        {}
func (SelectAndDrag) isAction() {}
func (ToolAction) isAction()    {}
func (Set) isAction()           {}
func (Format) isAction()        {}
func (Read) isAction()          {}
func (TellUser) isAction()      {}
func (Terminate) isAction()     {}
func (Unknown) isAction()       {}

// FilterOf returns the regex filter of an action, or "" when the variant has none.
func FilterOf(a Action) string {
	switch v := a.(type) {
	case Select:
		return v.Reg
	case SelectAndDrag:
		return v.Reg
	case ToolAction:
		return v.Reg
	case Set:
		return v.Reg
	case Format:
		return v.Reg
	case Read:
		return v.Reg
	}
	return ""
}
