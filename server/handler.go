package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/recommendit/core"
)

// Limits on top_k accepted over HTTP.
const (
	MinTopK     = 1
	MaxTopK     = 10
	DefaultTopK = 3
)

// Recommender is the query side the handler serves.
// *recommend.Recommender and *recommendit.Engine implement it.
type Recommender interface {
	Recommend(ctx context.Context, raw string, topK int) ([]core.QueryResult, error)
}

type Handler struct {
	recommender Recommender
	logger      *slog.Logger
}

func NewHandler(recommender Recommender, logger *slog.Logger) *Handler {
	return &Handler{recommender: recommender, logger: logger}
}

func (h *Handler) Recommend(c *fiber.Ctx) error {
	var req RecommendRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "cannot parse json"})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}
	if req.TopK < MinTopK || req.TopK > MaxTopK {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "top_k must be between 1 and 10"})
	}

	results, err := h.recommender.Recommend(c.UserContext(), req.Query, req.TopK)
	if errors.Is(err, core.ErrInvalidTopK) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("recommendation failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "recommendation failed"})
	}

	return c.JSON(toResponse(results))
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
