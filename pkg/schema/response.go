package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Response is a decoded planner response.
type Response struct {
	domain.PlannerResponse
	// Program carries actions in the text language when the planner sends them that way.
	Program string
}

type wireResponse struct {
	Role    string          `json:"role,omitempty"`
	Message string          `json:"message,omitempty"`
	Actions json.RawMessage `json:"actions,omitempty"`
	Program string          `json:"program,omitempty"`
}

// UnmarshalResponse decodes a planner response. A missing or null "actions"
// field leaves Actions nil; an empty array yields an empty, non-nil batch.
func UnmarshalResponse(data []byte) (Response, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	resp := Response{Program: w.Program}
	resp.Message = w.Message

	trimmed := bytes.TrimSpace(w.Actions)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return resp, nil
	}
	batch, err := UnmarshalBatch(trimmed)
	if err != nil {
		return Response{}, err
	}
	resp.Actions = batch
	return resp, nil
}

// MarshalResponse encodes a planner response in the wire form. Planners use the
// "assistant" role and "success" as their conventional message.
func MarshalResponse(resp domain.PlannerResponse) ([]byte, error) {
	w := struct {
		Role    string            `json:"role"`
		Message string            `json:"message,omitempty"`
		Actions *[]map[string]any `json:"actions,omitempty"`
	}{Role: domain.RoleAssistant, Message: resp.Message}
	if resp.HasActions() {
		actions := EncodeBatch(resp.Actions)
		w.Actions = &actions
	}
	return json.Marshal(w)
}
