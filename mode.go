package sheetpilot

import (
	"strings"

	"github.com/aretw0/sheetpilot/pkg/dsl"
)

// Mode selects how a chat message is handled.
type Mode string

const (
	// ModePlanner sends the message through the planner loop.
	ModePlanner Mode = "planner"
	// ModeEcho checks connectivity with the planner.
	ModeEcho Mode = "api"
	// ModeSimulate replays a built-in scenario without the planner.
	ModeSimulate Mode = "sim"
)

// DetectMode classifies a message by keyword. "api" wins over "sim".
// For simulation the scenario is simulate-1 when the message mentions "1",
// simulate-2 otherwise.
func DetectMode(text string) (Mode, string) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(lower, "api"):
		return ModeEcho, ""
	case strings.Contains(lower, "sim"):
		if strings.Contains(lower, "1") {
			return ModeSimulate, dsl.ScenarioSimulate1
		}
		return ModeSimulate, dsl.ScenarioSimulate2
	}
	return ModePlanner, ""
}
