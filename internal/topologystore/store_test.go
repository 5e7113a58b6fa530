package topologystore_test

import (
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/topologystore"
)

var _ topologystore.Store = (*dag.Graph)(nil)
