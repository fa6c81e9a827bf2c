/*
Package log provides structured logging for reposystem using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level.

# Components

Component loggers created with WithComponent (or WithPlanID /
WithScenarioID) carry a "component" field so log lines can be filtered by
subsystem. In reposystem the planner and executor log this way; the other
packages do not log.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	storeLog := log.WithComponent("store")
	storeLog.Info().Str("document", "graph.yaml").Msg("loaded store")

	planLog := log.WithComponent("planner").With().Str("plan_id", plan.ID).Logger()
	planLog.Info().Int("operations", len(plan.Operations)).Msg("plan derived")

Console output (human readable, colorized unless NO_COLOR is set) is the
default; JSON output is used only when --log-json is passed on the CLI.
*/
package log
