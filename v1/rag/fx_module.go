package rag

import "go.uber.org/fx"

// FXModule provides the *Manager.
var FXModule = fx.Module("rag",
	fx.Provide(NewManager),
)
