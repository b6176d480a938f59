package healthcheck

import (
	"context"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/app"
	"katutubo-llm/pkg/apperror"
	"katutubo-llm/pkg/llm"

	"github.com/gofiber/fiber/v3"
)

const WelcomeMessage = "Welcome to the Katutubo LLM Inference API!"

// Pinger probes a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	state  *app.State
	vector Pinger
}

func NewHandler(state *app.State, vector Pinger) *Handler {
	return &Handler{state: state, vector: vector}
}

func (h *Handler) Root(c fiber.Ctx) error {
	return c.JSON(llm.RootResponse{Message: WelcomeMessage})
}

// Ready never probes dependencies; it only reports whether startup finished.
func (h *Handler) Ready(c fiber.Ctx) error {
	return c.JSON(llm.HealthResponse{Ready: h.state.Ready()})
}

func (h *Handler) VectorStore(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.vector.Ping(ctx); err != nil {
		return apperror.Unavailable(config.ModuleHealth, c, err)
	}
	return c.JSON(llm.HealthResponse{Ready: true})
}
