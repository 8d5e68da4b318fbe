package main

import (
	"context"
	"fmt"
	"log"

	dig_container "github.com/trezcool/classpoll/apps/api/di/dig"
	echoapi "github.com/trezcool/classpoll/apps/api/echo"
	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/portal"
	"github.com/trezcool/classpoll/storage/session/boltslot"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		storage *dig_container.Storage,
		slot *boltslot.Slot,
		svc *portal.Service,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		defer func() {
			if err := storage.Close(); err != nil {
				apiLogger.Error("failed to close the store", err)
			}
		}()
		defer func() {
			if err := slot.Close(); err != nil {
				apiLogger.Error("failed to close the session file", err)
			}
		}()
		defer svc.Close()
		defer apiLogger.Info("Application stopped")

		// a failed load leaves the portal unavailable until POST /refresh succeeds
		if err := svc.Load(context.Background()); err != nil {
			apiLogger.Error("initial load failed", err)
		}
		if conf.Remote.RefreshSpec != "" {
			if err := svc.ScheduleRefresh(conf.Remote.RefreshSpec); err != nil {
				apiLogger.Error(fmt.Sprintf("invalid refresh spec %q", conf.Remote.RefreshSpec), err)
			}
		}

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
