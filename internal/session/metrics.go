package session

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("session")

var (
	matchesStarted, _  = meter.Int64Counter("arena.matches.started", metric.WithDescription("Matches that reached two bound players"))
	matchesFinished, _ = meter.Int64Counter("arena.matches.finished", metric.WithDescription("Matches that ended in a win or draw"))
	matchesDropped, _  = meter.Int64Counter("arena.matches.abandoned", metric.WithDescription("Active matches abandoned by both players"))
	movesApplied, _    = meter.Int64Counter("arena.moves.applied", metric.WithDescription("Valid moves applied to a board"))
)
