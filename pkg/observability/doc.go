/*
Package observability provides tools for monitoring the sheetpilot agent.

It exposes Prometheus collectors fed by domain.LifecycleHooks, so the
interpreter and the planner loop stay free of metrics code:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))

	agent, _ := sheetpilot.New(grid, planner, sheetpilot.WithLifecycleHooks(hooks))

The registry passed to NewMetrics is the one to serve on /metrics.
*/
package observability
