// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// Each function is called in order by app.Run, from configuration
// loading through DB setup, one-time startup work, HTTP handler
// construction, and finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "gatherly",     // used only for logging/diagnostics
	LoadConfig:     LoadConfig,     // load core + app config
	ValidateConfig: ValidateConfig, // validate URIs, backend choice, audit destinations
	ConnectDB:      ConnectDB,      // MongoDB, optional Postgres and Redis, upload storage
	EnsureSchema:   EnsureSchema,   // validators, indexes, Postgres table, template seed
	Startup:        Startup,        // report backends, check default template
	BuildHandler:   BuildHandler,   // build the HTTP router + middleware stack
	Shutdown:       Shutdown,       // close Redis, Postgres, MongoDB
}
