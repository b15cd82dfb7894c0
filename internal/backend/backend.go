// Package backend selects the remote task store named by the configuration.
package backend

import (
	"context"
	"fmt"

	"taskstream/internal/backend/googletasks"
	"taskstream/internal/backend/rest"
	"taskstream/internal/config"
	"taskstream/internal/service"
)

// New returns the service.Remote for cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (service.Remote, error) {
	switch cfg.Backend {
	case config.BackendREST, "":
		c, err := rest.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendGoogleTasks:
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}
