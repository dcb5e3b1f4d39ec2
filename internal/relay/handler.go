package relay

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/stonebriar/sagerelay/internal/events"
	"github.com/stonebriar/sagerelay/internal/workflow"
	"github.com/stonebriar/sagerelay/pkg/handlers"
	"github.com/stonebriar/sagerelay/pkg/routes"
)

// maxEventBytes bounds incoming event bodies.
const maxEventBytes = 1 << 20

// Handler provides HTTP endpoints for event intake.
type Handler struct {
	runtime *Runtime
	logger  *slog.Logger
}

// NewHandler creates a Handler over the relay runtime.
func NewHandler(runtime *Runtime) *Handler {
	return &Handler{
		runtime: runtime,
		logger:  runtime.Logger.With("handler", "events"),
	}
}

// Routes returns the route group definition for event endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/datazone", Handler: h.ProjectCreated},
			{Method: "POST", Pattern: "/model-approval", Handler: h.ModelApproval},
		},
	}
}

// ProjectCreated accepts a project creation event and starts the setup
// workflow in the background. The response acknowledges intake; workflow
// progress is observable through logs and the resulting repositories.
func (h *Handler) ProjectCreated(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	wc, err := events.ProjectContext(string(body))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	// Tie the background run to the lifecycle so server shutdown cancels
	// in-flight workflows.
	go func() {
		final, err := h.runtime.Machine.Run(h.runtime.Lifecycle.Context(), wc)
		if err != nil {
			h.logger.Error("workflow aborted", "project", wc.ProjectID, "error", err)
			return
		}
		h.logger.Info("workflow finished",
			"project", final.ProjectID,
			"status", final.Status,
			"version", final.Version(),
		)
	}()

	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{
		"status":     "ACCEPTED",
		"project_id": wc.ProjectID,
		"domain_id":  wc.DomainID,
	})
}

// ModelApproval processes a model package state change synchronously.
func (h *Handler) ModelApproval(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	change, err := events.ParseModelPackageChange(string(body))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.runtime.Approval.Handle(r.Context(), change); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"status": string(workflow.StatusSuccessful),
		"group":  change.GroupName,
	})
}
