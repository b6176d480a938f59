package infer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/app"
	"katutubo-llm/pkg/apperror"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"
	"katutubo-llm/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

type Runner interface {
	Run(ctx context.Context, req llm.InferRequest) (llm.InferResponse, error)
}

type Handler struct {
	state   *app.State
	runner  Runner
	timeout time.Duration
}

func NewHandler(state *app.State, runner Runner, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Handler{state: state, runner: runner, timeout: timeout}
}

// HandleInfer answers a prompt. Every failure, whatever its cause, is a 400
// carrying the error text.
func (h *Handler) HandleInfer(c fiber.Ctx) error {
	if !h.state.Ready() {
		return apperror.BadRequest(config.ModuleChat, c, status.NotReady, "service is not ready")
	}

	var req llm.InferRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleChat, c, status.InvalidRequestBody, err.Error())
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return apperror.BadRequest(config.ModuleChat, c, status.MissingParams, "prompt is empty")
	}
	if req.History == nil {
		req.History = llm.History{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	resp, err := h.runner.Run(ctx, req)
	if err != nil {
		logger.Error(err, "%v: Inference error for prompt %q", config.ModuleChat, req.Prompt)
		return apperror.FromError(config.ModuleChat, c, err)
	}
	return c.JSON(resp)
}
