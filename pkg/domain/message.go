package domain

// Planner roles.
const (
	RoleUser      = "User"
	RoleAssistant = "assistant"
)

// PlannerRequest is sent to the planning service every round.
type PlannerRequest struct {
	Role        string     `json:"role"`
	Message     string     `json:"message"`
	FirstRows   [][]string `json:"first_n_rows_of_sheet,omitempty"`
	ReadContext string     `json:"read_context,omitempty"`
}

// PlannerResponse is what the planning service answered.
// Actions is nil when the response carried no "actions" field, and non-nil
// (possibly empty) when it did.
type PlannerResponse struct {
	Message string
	Actions Batch
}

// HasActions reports whether the response carried an action batch.
func (r PlannerResponse) HasActions() bool { return r.Actions != nil }

// Reply is the user-facing answer of one request.
type Reply struct {
	Text string `json:"text"`
}
