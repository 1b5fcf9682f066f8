// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/skip/internal/adapters/config"
	_ "go.trai.ch/skip/internal/adapters/fs"
	_ "go.trai.ch/skip/internal/adapters/history"
	_ "go.trai.ch/skip/internal/adapters/logger"
	_ "go.trai.ch/skip/internal/adapters/shell"
	_ "go.trai.ch/skip/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/skip/internal/app"
	_ "go.trai.ch/skip/internal/engine/runner"
)
