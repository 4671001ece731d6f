/*
Package sheetpilot is a spreadsheet automation agent: it turns chat messages
into batches of grid actions, asks a remote planner for those batches, and
executes them against a live sheet.

The Agent owns three things: a Grid (in-memory or an xlsx workbook), a
Planner (usually the HTTP planning service) and a SessionStore that keeps each
conversation's clipboard between batches.

# Usage

	grid, _ := xlsx.Open("report.xlsx", "Sheet1")
	planner, _ := httpplanner.New("http://localhost:8000")

	agent, err := sheetpilot.New(grid, planner,
		sheetpilot.WithLogger(logger),
		sheetpilot.WithSessionStore(file.New(".sheetpilot/sessions")),
	)
	if err != nil {
		log.Fatal(err)
	}

	reply := agent.ProcessUserMessage(ctx, "session-1", "make the header bold")
	fmt.Println(reply.Text)

# Modes

A message containing "api" checks connectivity with the planner's echo
endpoint, a message containing "sim" replays a built-in scenario, and
anything else runs the planner loop: up to ten rounds in which Read actions
feed cell contents back to the planner.

Batches can also be run directly with Execute, for example from a file
written in the text action language:

	batch, _ := dsl.Parse(`REGEX ^.*$ | SELECT A1:A-1 ; REGEX ^.*$ | FORMAT style: bold`)
	outcome, err := agent.Execute(ctx, "session-1", batch)

The grid is shared by every session; the Agent serializes access to it.
*/
package sheetpilot
