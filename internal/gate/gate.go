// Package gate is the per-command feature flag consulted before any command
// handler runs its body, backed by the CommandLocks table.
package gate

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/echomasterleague/league-bot/internal/league"
	"github.com/echomasterleague/league-bot/internal/table"
)

// Gate answers "is command X allowed right now?".
type Gate struct {
	locks league.CommandLocksTable
}

// New creates a Gate over the CommandLocks table.
func New(locks league.CommandLocksTable) *Gate {
	return &Gate{locks: locks}
}

// IsEnabled reports whether a command may run. A missing row means allowed
// (default-open); the row is lazily seeded so operators can find and flip it
// in the sheet. Backend trouble also answers allowed, so an outage never
// locks the league out.
func (g *Gate) IsEnabled(ctx context.Context, command string) bool {
	rec, err := g.locks.ByCommand(ctx, command)
	if errors.Is(err, table.ErrRecordNotFound) {
		if _, seedErr := g.locks.Create(ctx, map[string]string{
			league.FieldCommandName: command,
			league.FieldIsAllowed:   "Yes",
		}); seedErr != nil {
			log.Warn("Failed to seed command lock", "command", command, "error", seedErr)
		}
		return true
	}
	if err != nil {
		log.Error("Command gate lookup failed, allowing command", "command", command, "error", err)
		return true
	}
	return rec.GetBool(league.FieldIsAllowed)
}

// Enable allows a command, creating the lock row if needed.
func (g *Gate) Enable(ctx context.Context, command string) error {
	return g.set(ctx, command, true)
}

// Disable blocks a command, creating the lock row if needed.
func (g *Gate) Disable(ctx context.Context, command string) error {
	return g.set(ctx, command, false)
}

func (g *Gate) set(ctx context.Context, command string, allowed bool) error {
	rec, err := g.locks.ByCommand(ctx, command)
	if errors.Is(err, table.ErrRecordNotFound) {
		value := "No"
		if allowed {
			value = "Yes"
		}
		_, err = g.locks.Create(ctx, map[string]string{
			league.FieldCommandName: command,
			league.FieldIsAllowed:   value,
		})
		return err
	}
	if err != nil {
		return err
	}
	rec.SetBool(league.FieldIsAllowed, allowed)
	if err := g.locks.Update(ctx, rec); err != nil {
		return err
	}
	log.Info("Toggled command gate", "command", command, "allowed", allowed)
	return nil
}

// Status returns the allowed flag of every explicit lock row. Commands with
// no row are absent from the map and implicitly allowed.
func (g *Gate) Status(ctx context.Context) (map[string]bool, error) {
	recs, err := g.locks.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(recs))
	for _, rec := range recs {
		out[rec.Get(league.FieldCommandName)] = rec.GetBool(league.FieldIsAllowed)
	}
	return out, nil
}
