package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
	"github.com/vk/backgrid/internal/registry"
)

var (
	// ErrUnknownConfigNode is returned when a configuration names a node the
	// pipeline does not declare.
	ErrUnknownConfigNode = errors.New("configuration for unknown node")
	// ErrUnboundInput is returned when a declared input of a node has no
	// producer. Executors report the same condition with the same sentinel.
	ErrUnboundInput = graph.ErrUnboundInput
)

// Pipeline builds graphs from a loaded pipeline definition and a registry of
// node kinds.
type Pipeline struct {
	spec    *config.Pipeline
	reg     *registry.Registry
	mode    dag.Mode
	baseDir string
}

// PipelineOption configures a Pipeline builder.
type PipelineOption func(*Pipeline)

// WithBaseDir resolves relative string parameters whose key ends in "path"
// against dir.
func WithBaseDir(dir string) PipelineOption {
	return func(p *Pipeline) {
		p.baseDir = dir
	}
}

// PipelineBuilder returns a builder for the pipeline.
func PipelineBuilder(spec *config.Pipeline, reg *registry.Registry, mode dag.Mode, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{spec: spec, reg: reg, mode: mode}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Builder = (*Pipeline)(nil)

// ConfigTemplate maps every node id to its kind defaults overlaid with the
// parameters from the pipeline file. Unknown kinds are skipped here and
// reported by Build.
func (p *Pipeline) ConfigTemplate() config.Config {
	tmpl := make(config.Config, len(p.spec.Nodes))
	for _, n := range p.spec.Nodes {
		params := config.Clone(n.Params)
		if k, err := p.reg.Kind(n.Kind); err == nil {
			params = config.Merge(k.Defaults, n.Params)
		}
		tmpl[n.Name] = params
	}
	return tmpl
}

// Build merges cfg over the template and constructs the graph.
func (p *Pipeline) Build(ctx context.Context, cfg config.Config) (*dag.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	tmpl := p.ConfigTemplate()
	for name := range cfg {
		if _, ok := tmpl[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownConfigNode, name)
		}
	}
	merged := config.Merge(tmpl, cfg)

	g := dag.New(p.mode)
	for _, spec := range p.spec.Nodes {
		n, err := p.newNode(spec, merged)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("adding node %q: %w", spec.Name, err)
		}
		logger.Debug("Node created.", "node", spec.Name, "kind", spec.Kind)
	}

	// In loose mode a repeated id replaces the earlier node, so only the
	// last spec of each id is linked.
	last := make(map[string]int, len(p.spec.Nodes))
	for i, spec := range p.spec.Nodes {
		last[spec.Name] = i
	}
	for i, spec := range p.spec.Nodes {
		if last[spec.Name] != i {
			continue
		}
		if err := p.link(g, spec); err != nil {
			return nil, err
		}
	}

	logger.Debug("Pipeline graph built.", "nodes", g.Len(), "mode", p.mode)
	return g, nil
}

func (p *Pipeline) newNode(spec config.NodeSpec, merged config.Config) (*node.Node, error) {
	kind, err := p.reg.Kind(spec.Kind)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", spec.Name, err)
	}
	params, err := merged.Sub(spec.Name)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", spec.Name, err)
	}
	params = p.resolvePaths(params)

	kernel, err := kind.New(params)
	if err != nil {
		return nil, fmt.Errorf("node %q (%s): %w", spec.Name, spec.Kind, err)
	}
	return node.New(spec.Name, kind.Inputs, kind.Outputs, kernel)
}

// link connects every declared input of the node, in port order.
func (p *Pipeline) link(g *dag.Graph, spec config.NodeSpec) error {
	ports := make([]string, 0, len(spec.Inputs))
	for port := range spec.Inputs {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	for _, port := range ports {
		src, err := nodeid.Parse(spec.Inputs[port])
		if err != nil {
			return fmt.Errorf("node %q input %q: %w", spec.Name, port, err)
		}
		if err := g.Connect(src, nodeid.PortRef(spec.Name, port)); err != nil {
			return fmt.Errorf("node %q input %q: %w", spec.Name, port, err)
		}
	}

	n, _ := g.Node(spec.Name)
	for _, port := range n.InputNames() {
		if _, ok := spec.Inputs[port]; !ok {
			return fmt.Errorf("%w: node %q input %q", ErrUnboundInput, spec.Name, port)
		}
	}
	return nil
}

func (p *Pipeline) resolvePaths(params config.Config) config.Config {
	if p.baseDir == "" {
		return params
	}
	out := config.Clone(params)
	for k, v := range out {
		s, ok := v.(string)
		if ok && s != "" && strings.HasSuffix(k, "path") && !filepath.IsAbs(s) {
			out[k] = filepath.Join(p.baseDir, s)
		}
	}
	return out
}
