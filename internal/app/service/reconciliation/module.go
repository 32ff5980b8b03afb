package reconciliation

import "go.uber.org/fx"

// Module exposes the notification verifier and reconciliation service via Fx.
var Module = fx.Options(
	fx.Provide(NewVerifier),
	fx.Provide(NewService),
)
