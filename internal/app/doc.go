// Package app wires the weekly report web service together: it initializes
// OpenTelemetry and the business metrics, builds the services, mounts the
// HTTP handlers behind the middleware chain and runs the server until the
// context is cancelled or the process is signalled.
//
// # Usage
//
//	cfg, _ := config.Load()
//	logger := infrastructure.MustInitializeLogger(cfg.Logging)
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
