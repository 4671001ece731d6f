/*
Package runner implements the planner loop of the sheetpilot agent.

It acts as the bridge between the planning service (ports.Planner) and a
Workspace that executes action batches against the grid. One call to Run is
one user request: the runner sends the message, executes the returned batch,
and when the batch read cells back it sends the accumulated read results in a
new round, up to a fixed number of rounds.

# Usage

	r := runner.New(planner, workspace,
		runner.WithLogger(logger),
		runner.WithMaxRounds(10),
	)

	res := r.Run(ctx, "highlight the questions in column C")
	fmt.Println(res.Text)

Failures never escape as panics or partial replies: a planner or grid error
turns the reply into ErrorReply and is kept in Result.Err for logging.
*/
package runner
