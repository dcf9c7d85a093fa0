//go:build android

package main

import (
	"log/slog"

	"gioui.org/app"
	// declares ACCESS_FINE_LOCATION in the manifest; Gio has no narrower
	// package for it
	_ "gioui.org/app/permission/bluetooth"
	"github.com/olablt/gio-openmaps/internal/config"
	"github.com/olablt/gio-openmaps/internal/permission"
	"github.com/olablt/gio-openmaps/location"
)

func platformLocation(_ *config.Config, logger *slog.Logger) location.Provider {
	return location.NewAndroidProvider(app.JavaVM(), app.AppContext(), location.DefaultPollInterval, logger)
}

func platformPermissions(_ *config.Config, logger *slog.Logger) permission.Requester {
	return permission.NewAndroidRequester(app.JavaVM(), app.AppContext(), logger)
}
