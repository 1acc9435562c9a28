package service

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// RegisterPollerParams defines the dependencies RegisterPoller receives
// from Fx.
type RegisterPollerParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Poller    *Poller
	// AppCtx is the application context created in main; it is cancelled on
	// SIGINT/SIGTERM, which stops the loop.
	AppCtx context.Context `name:"appCtx"`
}

// RegisterPoller ties the polling loop to the application lifecycle.
func RegisterPoller(p RegisterPollerParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go p.Poller.Run(p.AppCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Poller: application is shutting down.")
			return nil
		},
	})
}

// Module provides the poller and starts it with the application.
var Module = fx.Options(
	fx.Provide(NewPoller),
	fx.Invoke(RegisterPoller),
)
