package app

import (
	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/modules/httpprobe"
	"github.com/vk/flockgo/modules/socketio"
	"github.com/vk/flockgo/modules/tick"
)

// coreModules is the definitive list of all runner modules that are
// compiled into the flockgo binary.
var coreModules = []catalog.Module{
	&tick.Module{},
	&httpprobe.Module{},
	&socketio.Module{},
}
