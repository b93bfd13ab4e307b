package controller

import (
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	version       string
	speechService service.ISpeechService
	agentReady    func() bool
}

func NewHealthController(version string, speechService service.ISpeechService, agentReady func() bool) IHealthController {
	return &healthController{
		version:       version,
		speechService: speechService,
		agentReady:    agentReady,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

// Health always answers 200; the flags say which collaborators are usable
func (c *healthController) Health(ctx *fiber.Ctx) error {
	agent := true
	if c.agentReady != nil {
		agent = c.agentReady()
	}

	return ctx.JSON(dto.HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Version:        c.version,
		TTSAvailable:   c.speechService.TTSAvailable(),
		ASRAvailable:   c.speechService.ASRAvailable(),
		AgentAvailable: agent,
	})
}
