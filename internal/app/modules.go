package app

import (
	"github.com/vk/backgrid/internal/registry"
	"github.com/vk/backgrid/modules/csv_source"
	"github.com/vk/backgrid/modules/print"
	"github.com/vk/backgrid/modules/returns"
	"github.com/vk/backgrid/modules/threshold"
)

// coreModules is the definitive list of all node kinds compiled into the
// backgrid binary.
var coreModules = []registry.Module{
	&csv_source.Module{},
	&returns.Module{},
	&threshold.Module{},
	&print.Module{},
}
