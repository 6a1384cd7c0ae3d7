package container

import (
	"fmt"

	"triagelens/internal/config"
	"triagelens/internal/dataset"
	"triagelens/internal/session"
	"triagelens/ui"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	Loader *dataset.Loader
	State  *session.State
	Server *ui.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	loader, err := dataset.NewLoader(cfg.Data.DecodeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset loader: %w", err)
	}

	c := &Container{
		Config: cfg,
		Loader: loader,
		State:  session.NewState(),
	}
	c.Server = ui.NewServer(c.State, c.Loader, ui.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
		PageSize:       cfg.Data.PageSize,
	})
	return c, nil
}

// Shutdown releases cached decodes and resets the session
func (c *Container) Shutdown() {
	c.Loader.Purge()
	c.State.Reset()
}
