//go:build linux && !android

package main

import (
	"log/slog"

	"github.com/olablt/gio-openmaps/internal/config"
	"github.com/olablt/gio-openmaps/internal/permission"
	"github.com/olablt/gio-openmaps/location"
)

// desktopID must match the installed .desktop file for GeoClue to grant access.
const desktopID = "gio-openmaps"

func platformLocation(_ *config.Config, logger *slog.Logger) location.Provider {
	return location.NewGeoclueProvider(desktopID, logger)
}

// GeoClue enforces its own access policy, so the app grants itself
// everything not denied in the config.
func platformPermissions(cfg *config.Config, _ *slog.Logger) permission.Requester {
	return permission.NewStaticRequester(cfg.DeniedPermissions...)
}
