// Package debug starts the eino visual debugger when it is enabled.
package debug

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/FinAgentGo/config"
)

type EinoDebugger struct {
	config *config.Config
	init   func(context.Context) error
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		init: func(ctx context.Context) error {
			return devops.Init(ctx)
		},
	}
}

// Initialize registers the debug plugin. It must run before any agent is built
// so the react graph is visible in the debug UI.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	slog.Info("initializing eino debug plugin", "port", d.config.EinoDebugPort)
	if err := d.init(ctx); err != nil {
		return fmt.Errorf("failed to initialize eino debug plugin: %w", err)
	}
	slog.Info("eino debug server ready", "url", d.DebugURL())
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config != nil && d.config.EinoDebugEnabled
}

func (d *EinoDebugger) DebugURL() string {
	if !d.IsEnabled() {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
