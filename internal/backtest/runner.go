package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
	"github.com/vk/backgrid/internal/order"
	"github.com/vk/backgrid/internal/portfolio"
	"github.com/vk/backgrid/internal/session"
	"github.com/vk/backgrid/internal/valuation"
)

var (
	// ErrNoUniqueSink is returned when the output names a bare port but the
	// graph does not have exactly one sink.
	ErrNoUniqueSink = errors.New("output needs a unique sink")
	// ErrNoDecisions is returned when the targets table is empty.
	ErrNoDecisions = errors.New("no decision timestamps")
)

// Config parameterizes a run.
type Config struct {
	InitialCash float64
	Policy      order.Policy
	// Fit runs the Fit method on every node before predicting.
	Fit bool
	// Output is "node.port", or a bare port name on the graph's unique sink.
	Output string
}

// Runner executes one backtest over a session.
type Runner struct {
	Session session.Session
	Prices  domain.PriceSource
	Config  Config
	// OnSnapshot, when set, receives the snapshot of every decision timestamp
	// as soon as the portfolio reaches it.
	OnSnapshot func(domain.Snapshot)
}

// Result is the outcome of a run.
type Result struct {
	Portfolio *portfolio.Portfolio
	Snapshots []domain.Snapshot
	Fills     []order.Fill
	Targets   []frames.Row
}

// Run executes the pipeline and simulates trading on its targets.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	targets, err := r.forecast(ctx)
	if err != nil {
		return nil, err
	}
	times, byTime := groupByTime(targets)
	if len(times) == 0 {
		return nil, ErrNoDecisions
	}

	ledger, err := portfolio.FromCash(r.Config.InitialCash, times[0])
	if err != nil {
		return nil, err
	}
	pf := portfolio.New(ledger, valuation.New(r.Prices))
	proc := order.NewProcessor(r.Prices)

	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fills, err := proc.Process(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("processing orders at %s: %w", t.Format(time.RFC3339), err)
		}
		if i > 0 {
			if err := pf.Advance(ctx, t, fills); err != nil {
				return nil, fmt.Errorf("advancing portfolio to %s: %w", t.Format(time.RFC3339), err)
			}
		}
		if r.OnSnapshot != nil {
			snap, err := pf.Snapshot(ctx, t)
			if err != nil {
				return nil, err
			}
			r.OnSnapshot(snap)
		}

		if i == len(times)-1 {
			break
		}
		submitted := 0
		for _, tr := range byTime[i] {
			id := domain.AssetID(tr.AssetID)
			qty := tr.Value - ledger.Shares(id)
			if qty == 0 {
				continue
			}
			o := order.Order{AssetID: id, Quantity: qty, Start: t, End: times[i+1], Policy: r.Config.Policy}
			if err := proc.Submit(o); err != nil {
				return nil, err
			}
			submitted++
		}
		logger.Debug("Decision applied.", "at", t, "fills", len(fills), "orders", submitted)
	}

	last := times[len(times)-1]
	if _, err := pf.Snapshot(ctx, last); err != nil {
		return nil, fmt.Errorf("final snapshot at %s: %w", last.Format(time.RFC3339), err)
	}

	return &Result{
		Portfolio: pf,
		Snapshots: pf.Snapshots(),
		Fills:     proc.Fills(),
		Targets:   targets,
	}, nil
}

// forecast runs the graph and returns the rows of the output table.
func (r *Runner) forecast(ctx context.Context) ([]frames.Row, error) {
	exec := r.Session.Executor()
	g := r.Session.Graph()

	if r.Config.Fit {
		if _, err := exec.RunFull(ctx, node.Fit); err != nil {
			return nil, fmt.Errorf("fit failed: %w", err)
		}
	}
	if _, err := exec.RunFull(ctx, node.Predict); err != nil {
		return nil, fmt.Errorf("predict failed: %w", err)
	}

	ref, err := r.outputRef(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := g.Node(ctx, ref.Node)
	if !ok {
		return nil, fmt.Errorf("output node %q not found", ref.Node)
	}
	v, err := n.Output(node.Predict, ref.Port)
	if err != nil {
		return nil, err
	}
	df, err := frames.From(v)
	if err != nil {
		return nil, fmt.Errorf("output %s: %w", ref, err)
	}
	rows, err := frames.Rows(df, frames.Target)
	if err != nil {
		return nil, fmt.Errorf("output %s: %w", ref, err)
	}
	return rows, nil
}

func (r *Runner) outputRef(ctx context.Context) (nodeid.Ref, error) {
	if strings.Contains(r.Config.Output, ".") {
		return nodeid.Parse(r.Config.Output)
	}
	sinks, err := r.Session.Graph().Sinks(ctx)
	if err != nil {
		return nodeid.Ref{}, err
	}
	if len(sinks) != 1 {
		return nodeid.Ref{}, fmt.Errorf("%w: output %q, sinks %v", ErrNoUniqueSink, r.Config.Output, sinks)
	}
	return nodeid.Ref{Node: sinks[0], Port: r.Config.Output}, nil
}

// groupByTime returns the distinct timestamps ascending and the rows at each.
func groupByTime(rows []frames.Row) ([]time.Time, [][]frames.Row) {
	idx := make(map[int64]int)
	var times []time.Time
	for _, r := range rows {
		k := r.Timestamp.UnixNano()
		if _, ok := idx[k]; !ok {
			idx[k] = 0
			times = append(times, r.Timestamp)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, t := range times {
		idx[t.UnixNano()] = i
	}
	groups := make([][]frames.Row, len(times))
	for _, r := range rows {
		i := idx[r.Timestamp.UnixNano()]
		groups[i] = append(groups[i], r)
	}
	return times, groups
}
