package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tri-star/chase-light-sub003/internal/pipeline"
)

// OpsHandler serves the operational endpoints.
type OpsHandler struct {
	pipeline *pipeline.Pipeline
}

func NewOpsHandler(p *pipeline.Pipeline) *OpsHandler {
	return &OpsHandler{pipeline: p}
}

func (h *OpsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerRun starts one pipeline run synchronously and reports per-feed
// outcomes.
func (h *OpsHandler) TriggerRun(c echo.Context) error {
	result, err := h.pipeline.Run(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	type feedOutcome struct {
		FeedID  int64  `json:"feedId"`
		Created int    `json:"created"`
		Error   string `json:"error,omitempty"`
	}
	outcomes := make([]feedOutcome, 0, len(result.FeedResults))
	for _, fr := range result.FeedResults {
		outcome := feedOutcome{FeedID: fr.FeedID, Created: len(fr.Created)}
		if fr.Err != nil {
			outcome.Error = fr.Err.Error()
		}
		outcomes = append(outcomes, outcome)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"startedAt":  result.StartedAt,
		"finishedAt": result.FinishedAt,
		"feeds":      outcomes,
	})
}
