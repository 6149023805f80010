package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/logger"
)

// HealthHandler reports store connectivity
type HealthHandler struct {
	repo   fabric.Repository
	logger *logger.Logger
}

func NewHealthHandler(repo fabric.Repository, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health check",
		Tags:        []string{"health"},
	}, h.Health)
}

type HealthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func (h *HealthHandler) Health(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	if err := h.repo.Health(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		return nil, huma.Error503ServiceUnavailable("store unavailable")
	}

	resp := &HealthOutput{}
	resp.Body.Status = "ok"
	return resp, nil
}
