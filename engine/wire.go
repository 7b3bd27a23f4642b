//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package engine

import (
	"github.com/google/wire"

	"github.com/spaghettifunk/sdengine/engine/config"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

// NewContext builds every subsystem for cfg. window is nil when running
// without a display.
func NewContext(cfg *config.Config, window metadata.WindowSurface) (*Context, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
