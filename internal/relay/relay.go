package relay

import (
	"context"
	"net/http"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/pkg/middleware"
	"github.com/stonebriar/sagerelay/pkg/module"
	"github.com/stonebriar/sagerelay/pkg/routes"
)

// NewModule creates the event intake module with its middleware stack. The
// returned runtime exposes the workflow machine for one-shot invocations.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Runtime, error) {
	runtime, err := NewRuntime(ctx, cfg, infra)
	if err != nil {
		return nil, nil, err
	}

	handler := NewHandler(runtime)

	mux := http.NewServeMux()
	routes.Register(mux, handler.Routes())

	m := module.New("/events", mux)
	m.Use(middleware.Recovery(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))

	return m, runtime, nil
}
