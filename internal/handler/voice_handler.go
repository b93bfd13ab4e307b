package handler

import (
	"context"

	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/repository/memory"
	"voice-shopping-be/internal/service"
	internalWS "voice-shopping-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type VoiceHandler struct {
	ctx       context.Context
	hub       *internalWS.Hub
	assistant service.IAssistantService
	speech    service.ISpeechService
	buffers   *memory.AudioSessionRepository
	logger    logger.ILogger
}

// NewVoiceHandler serves /ws/voice. Sessions live no longer than ctx.
func NewVoiceHandler(
	ctx context.Context,
	hub *internalWS.Hub,
	assistant service.IAssistantService,
	speech service.ISpeechService,
	buffers *memory.AudioSessionRepository,
	log logger.ILogger,
) *VoiceHandler {
	return &VoiceHandler{
		ctx:       ctx,
		hub:       hub,
		assistant: assistant,
		speech:    speech,
		buffers:   buffers,
		logger:    log,
	}
}

func (h *VoiceHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/ws/voice", h.ServeWs)
	app.Get("/api/voice/sessions", h.Sessions)
}

// ServeWs upgrades the request and runs one voice session on it
func (h *VoiceHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		sessionID := "session_" + uuid.NewString()
		session := internalWS.NewSession(sessionID, h.assistant, h.speech, h.buffers, h.logger)

		h.logger.Info("VoiceHandler", "Starting voice session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.ctx, h.hub, conn, session)
		h.logger.Info("VoiceHandler", "Voice session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

// Sessions reports connected sockets and live audio buffers
func (h *VoiceHandler) Sessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected": h.hub.Count(),
		"buffers":   h.buffers.Count(),
	})
}
