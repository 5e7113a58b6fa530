// Package hcl_adapter implements config.Loader for HCL pipeline files.
//
// A pipeline is one or more `.hcl` files holding a single `portfolio` block
// and any number of `node` blocks:
//
//	portfolio {
//	  initial_cash = 100000
//	  prices       = "prices.csv"
//	  policy       = "end"
//	}
//
//	node "rets" {
//	  kind   = "returns"
//	  inputs = { bars = "bars" }
//	  params = { periods = 1 }
//	}
//
// Files are read in lexical path order, and node blocks keep their order
// within each file.
package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/fsutil"
)

var (
	// ErrNoPortfolio is returned when no file declares a portfolio block.
	ErrNoPortfolio = errors.New("no portfolio block found")
	// ErrDuplicatePortfolio is returned when more than one portfolio block is declared.
	ErrDuplicatePortfolio = errors.New("more than one portfolio block")
	// ErrNoFiles is returned when the paths contain no .hcl files.
	ErrNoFiles = errors.New("no .hcl files found")
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file under the given paths into a single pipeline.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, dir, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	pipeline := &config.Pipeline{Dir: dir}
	var portfolio *PortfolioBlock

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Portfolio {
			if portfolio != nil {
				return nil, fmt.Errorf("%w: second one in %s", ErrDuplicatePortfolio, file)
			}
			portfolio = p
		}
		for _, n := range root.Nodes {
			spec, err := translateNode(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			pipeline.Nodes = append(pipeline.Nodes, spec)
		}
	}

	if portfolio == nil {
		return nil, ErrNoPortfolio
	}
	pipeline.Portfolio = translatePortfolio(portfolio)

	logger.Debug("HCL loading complete.", "nodes", len(pipeline.Nodes), "dir", pipeline.Dir)
	return pipeline, nil
}

func translateNode(ctx context.Context, n *NodeBlock) (config.NodeSpec, error) {
	params, err := paramsToConfig(ctx, n.Params)
	if err != nil {
		return config.NodeSpec{}, fmt.Errorf("node %q params: %w", n.Name, err)
	}
	inputs := make(map[string]string, len(n.Inputs))
	for port, src := range n.Inputs {
		inputs[port] = src
	}
	return config.NodeSpec{
		Name:   n.Name,
		Kind:   n.Kind,
		Inputs: inputs,
		Params: params,
	}, nil
}

func translatePortfolio(p *PortfolioBlock) config.PortfolioSpec {
	spec := config.PortfolioSpec{
		InitialCash: p.InitialCash,
		Prices:      p.Prices,
		Policy:      p.Policy,
		Fit:         p.Fit,
		Output:      p.Output,
	}
	if spec.Policy == "" {
		spec.Policy = defaultPolicy
	}
	if spec.Output == "" {
		spec.Output = defaultOutput
	}
	return spec
}

// findAllHCLFiles walks all given paths and returns a sorted, de-duplicated
// list of .hcl files, plus the directory relative paths resolve against.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, string, error) {
	var all []string
	seen := make(map[string]struct{})
	dir := ""

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, "", fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if dir == "" {
			dir = path
			if !info.IsDir() {
				dir = filepath.Dir(path)
			}
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, "", err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	sort.Strings(all)
	return all, dir, nil
}
