package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vk/backgrid/internal/backtest"
	"github.com/vk/backgrid/internal/builder"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/order"
	"github.com/vk/backgrid/internal/portfoliolog"
	"github.com/vk/backgrid/internal/session"
	"github.com/vk/backgrid/internal/valuation"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		if err != nil {
			a.setPhase(phaseFailed)
		}
	}()

	if a.config.Report != "" {
		return a.report(ctx, a.config.Report)
	}

	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}

	a.setPhase(phaseLoading)
	pipeline, err := a.loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	a.logger.Info("Pipeline loaded.", "nodes", len(pipeline.Nodes), "dir", pipeline.Dir)

	a.setPhase(phaseBuilding)
	g, err := builder.PipelineBuilder(pipeline, a.registry, dag.Strict, builder.WithBaseDir(pipeline.Dir)).Build(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to build node graph: %w", err)
	}
	a.logger.Debug("Node graph built.", "node_count", g.Len())

	sess, err := a.sessions.NewSession(ctx, g, session.Options{Reuse: a.config.Reuse})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			a.logger.Error("Session close failed.", "error", err)
		}
	}()
	a.setGraph(sess.Graph())

	pf := pipeline.Portfolio
	pricesPath := pf.Prices
	if !filepath.IsAbs(pricesPath) && pipeline.Dir != "" {
		pricesPath = filepath.Join(pipeline.Dir, pricesPath)
	}
	prices, err := valuation.LoadCSV(ctx, pricesPath)
	if err != nil {
		return fmt.Errorf("failed to load prices: %w", err)
	}
	policy, err := order.ParsePolicy(pf.Policy)
	if err != nil {
		return err
	}

	a.setPhase(phaseRunning)
	a.logger.Info("▶️ Starting backtest.", "initial_cash", pf.InitialCash, "policy", policy, "fit", pf.Fit)
	runner := &backtest.Runner{
		Session: sess,
		Prices:  prices,
		Config: backtest.Config{
			InitialCash: pf.InitialCash,
			Policy:      policy,
			Fit:         pf.Fit,
			Output:      pf.Output,
		},
		OnSnapshot: func(s domain.Snapshot) {
			a.logger.Debug("Snapshot.", "at", s.Timestamp, "net_wealth", s.NetWealth, "leverage", s.Leverage)
		},
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if a.config.LogDir != "" {
		a.setPhase(phaseWriting)
		if err := a.writeLog(ctx, pipeline.Dir, pf.InitialCash, res); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.result = res
	a.phase = phaseDone
	a.mu.Unlock()

	final := res.Snapshots[len(res.Snapshots)-1]
	a.logger.Info("✅ Backtest finished.",
		"snapshots", len(res.Snapshots),
		"fills", len(res.Fills),
		"final_net_wealth", final.NetWealth,
		"final_leverage", final.Leverage,
	)
	return nil
}

func (a *App) writeLog(ctx context.Context, pipelineDir string, initialCash float64, res *backtest.Result) error {
	dir := filepath.Join(a.config.LogDir, a.runID)
	err := portfoliolog.Write(dir, &portfoliolog.Log{
		Meta: portfoliolog.Meta{
			RunID:       a.runID,
			CreatedAt:   time.Now().UTC(),
			InitialCash: initialCash,
			Pipeline:    pipelineDir,
		},
		Holdings: res.Portfolio.Ledger().Rows(),
		Stats:    res.Snapshots,
		Fills:    portfoliolog.FillRecords(res.Fills),
	})
	if err != nil {
		return fmt.Errorf("failed to write portfolio log: %w", err)
	}
	a.logger.Info("Portfolio log written.", "dir", dir)

	if a.config.S3Bucket == "" {
		return nil
	}
	pub, err := a.newPublisher(ctx, a.config.S3Bucket, a.config.S3Prefix)
	if err != nil {
		return err
	}
	if _, err := pub.Publish(ctx, dir); err != nil {
		return fmt.Errorf("failed to publish portfolio log: %w", err)
	}
	return nil
}
