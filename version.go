package sheetpilot

import _ "embed"

// Version is the release of the agent, read from the VERSION file.
//
//go:embed VERSION
var Version string
