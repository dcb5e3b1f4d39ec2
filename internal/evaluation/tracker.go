package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Tracker forwards metrics to an MLflow-compatible tracking server.
// Tracking is best-effort: callers log and swallow its errors, evaluation
// never fails because the tracker is unreachable.
type Tracker struct {
	endpoint   string
	experiment string
	client     *http.Client
	logger     *slog.Logger
}

// NewTracker creates a Tracker for the given endpoint. An empty endpoint
// returns nil, which disables tracking.
func NewTracker(endpoint, experiment string, logger *slog.Logger) *Tracker {
	if endpoint == "" {
		return nil
	}
	if experiment == "" {
		experiment = "0"
	}
	return &Tracker{
		endpoint:   endpoint,
		experiment: experiment,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("system", "tracking"),
	}
}

// LogMetrics creates a run, records each metric, and terminates the run.
func (t *Tracker) LogMetrics(ctx context.Context, m Metrics) error {
	runID, err := t.createRun(ctx)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	now := time.Now().UnixMilli()
	for name, value := range map[string]float64{
		"auc":       m.AUC,
		"accuracy":  m.Accuracy,
		"precision": m.Precision,
		"recall":    m.Recall,
		"f1":        m.F1,
	} {
		if err := t.post(ctx, "/api/2.0/mlflow/runs/log-metric", map[string]any{
			"run_id":    runID,
			"key":       name,
			"value":     value,
			"timestamp": now,
		}, nil); err != nil {
			return fmt.Errorf("log metric %s: %w", name, err)
		}
	}

	if err := t.post(ctx, "/api/2.0/mlflow/runs/update", map[string]any{
		"run_id": runID,
		"status": "FINISHED",
	}, nil); err != nil {
		return fmt.Errorf("terminate run: %w", err)
	}

	t.logger.InfoContext(ctx, "metrics logged", "run_id", runID)
	return nil
}

func (t *Tracker) createRun(ctx context.Context) (string, error) {
	var resp struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}

	err := t.post(ctx, "/api/2.0/mlflow/runs/create", map[string]any{
		"experiment_id": t.experiment,
		"start_time":    time.Now().UnixMilli(),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Run.Info.RunID == "" {
		return "", ErrNoRunID
	}
	return resp.Run.Info.RunID, nil
}

func (t *Tracker) post(ctx context.Context, path string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d", ErrTrackingFailed, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
