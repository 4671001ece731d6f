package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// Skip reasons. The interpreter never returns these; they are reported through
// LifecycleHooks.OnSkip and the debug log.
var (
	// ErrNoSelection is reported when an action needs a selection and none is active.
	ErrNoSelection = errors.New("no active selection")
	// ErrEmptyClipboard is reported when paste runs before any copy.
	ErrEmptyClipboard = errors.New("clipboard is empty")
	// ErrUnknownTool is reported for a ToolAction with an unrecognised tool name.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolFailed is reported when an external tool exits with an error or
	// returns values that do not fit the selection.
	ErrToolFailed = errors.New("tool failed")
	// ErrUnknownStyle is reported for a Format with an unrecognised style name.
	ErrUnknownStyle = errors.New("unknown style")
	// ErrMissingParameter is reported when a style or action lacks a required field.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrNoFormula is reported when SelectAndDrag finds no formula in its source cell.
	ErrNoFormula = errors.New("source cell has no formula")
	// ErrInvalidFilter is reported when the reg field does not compile.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnknownAction is reported for an action type outside the action language.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidRange is returned when A1 text cannot be parsed into a range.
	ErrInvalidRange = errors.New("invalid range")
)

// Planner failures. The runner converts them into a fixed user-visible reply.
var (
	// ErrPlannerTransport wraps network and HTTP status failures.
	ErrPlannerTransport = errors.New("planner transport failure")
	// ErrPlannerResponse wraps undecodable or schema-invalid responses.
	ErrPlannerResponse = errors.New("planner returned an invalid response")
)

// ErrScenarioNotFound is returned when a simulation scenario does not exist.
var ErrScenarioNotFound = errors.New("scenario not found")
