package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Portfolio []*PortfolioBlock `hcl:"portfolio,block"`
	Nodes     []*NodeBlock      `hcl:"node,block"`
	Remain    hcl.Body          `hcl:",remain"`
}

// PortfolioBlock is the HCL schema of the `portfolio` block.
type PortfolioBlock struct {
	InitialCash float64 `hcl:"initial_cash"`
	Prices      string  `hcl:"prices"`
	Policy      string  `hcl:"policy,optional"`
	Fit         bool    `hcl:"fit,optional"`
	Output      string  `hcl:"output,optional"`
}

// NodeBlock is the HCL schema of a `node "<name>"` block.
type NodeBlock struct {
	Name   string            `hcl:"name,label"`
	Kind   string            `hcl:"kind"`
	Inputs map[string]string `hcl:"inputs,optional"`
	Params hcl.Expression    `hcl:"params,optional"`
}

const (
	defaultPolicy = "end"
	defaultOutput = "output"
)
