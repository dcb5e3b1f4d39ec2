package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/internal/relay"
	"github.com/stonebriar/sagerelay/pkg/module"
)

type Modules struct {
	Events *module.Module
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	eventsModule, _, err := relay.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{Events: eventsModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.Events)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
