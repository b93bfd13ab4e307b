package controller

import (
	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISpeechController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
	GetAudio(ctx *fiber.Ctx) error
	DeleteAudio(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
	Voices(ctx *fiber.Ctx) error
}

type speechController struct {
	speechService service.ISpeechService
}

func NewSpeechController(speechService service.ISpeechService) ISpeechController {
	return &speechController{
		speechService: speechService,
	}
}

func (c *speechController) RegisterRoutes(r fiber.Router) {
	r.Post("/tts", c.Synthesize)
	r.Get("/tts/audio/:id", c.GetAudio)
	r.Delete("/tts/audio/:id", c.DeleteAudio)
	r.Post("/asr", c.Transcribe)
	r.Get("/voices", c.Voices)
}

func (c *speechController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.TTSRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.speechService.Synthesize(ctx.UserContext(), &req)
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(res)
}

func (c *speechController) GetAudio(ctx *fiber.Ctx) error {
	path, err := c.speechService.AudioPath(ctx.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	ctx.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	ctx.Set(fiber.HeaderContentDisposition, "inline")
	return ctx.SendFile(path)
}

func (c *speechController) DeleteAudio(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if err := c.speechService.DeleteAudio(id); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Audio deleted", fiber.Map{"audio_id": id}))
}

// Transcribe reads the multipart field audio_file and an optional language form value
func (c *speechController) Transcribe(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("audio_file")
	if err != nil {
		return serverutils.BadRequest("audio_file is required")
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	transcript, err := c.speechService.Transcribe(ctx.UserContext(), file, header.Filename, ctx.FormValue("language"))
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(dto.TranscriptResponse{
		Text:     transcript.Text,
		Language: transcript.Language,
	})
}

func (c *speechController) Voices(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Available voices", c.speechService.Voices()))
}
