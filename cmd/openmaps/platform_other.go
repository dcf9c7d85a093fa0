//go:build !linux

package main

import (
	"log/slog"

	"github.com/olablt/gio-openmaps/internal/config"
	"github.com/olablt/gio-openmaps/internal/permission"
	"github.com/olablt/gio-openmaps/location"
)

// No position source; MY_LOCATION can still supply a fixed one.
func platformLocation(*config.Config, *slog.Logger) location.Provider {
	return nil
}

func platformPermissions(cfg *config.Config, _ *slog.Logger) permission.Requester {
	return permission.NewStaticRequester(cfg.DeniedPermissions...)
}
