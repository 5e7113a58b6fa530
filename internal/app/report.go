package app

import (
	"context"
	"fmt"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/portfolio"
	"github.com/vk/backgrid/internal/portfoliolog"
	"github.com/vk/backgrid/internal/valuation"
)

// report prints the holdings and statistics stored in a portfolio log.
func (a *App) report(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)
	a.setPhase(phaseLoading)

	l, err := portfoliolog.Read(dir)
	if err != nil {
		return fmt.Errorf("failed to read portfolio log: %w", err)
	}
	ledger, err := l.Ledger()
	if err != nil {
		return err
	}
	logger.Debug("Portfolio log loaded.", "dir", dir, "run_id", l.Meta.RunID, "rows", len(l.Holdings))

	fmt.Fprintf(a.outW, "== run %s (%s) ==\n", l.Meta.RunID, l.Meta.Pipeline)
	fmt.Fprintln(a.outW, "== holdings ==")
	fmt.Fprintln(a.outW, portfolio.HoldingsFrame(ledger.Rows()).Table())
	fmt.Fprintln(a.outW, "== statistics ==")
	fmt.Fprintln(a.outW, valuation.StatsFrame(l.Stats).Table())

	a.setPhase(phaseDone)
	logger.Info("✅ Report printed.", "timestamps", len(ledger.Timestamps()), "fills", len(l.Fills))
	return nil
}
