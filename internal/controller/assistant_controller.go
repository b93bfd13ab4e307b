package controller

import (
	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Agent(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
	r.Post("/agent", c.Agent)
}

func (c *assistantController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Query(ctx.UserContext(), &req, service.ChannelREST)
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(res)
}

func (c *assistantController) Agent(ctx *fiber.Ctx) error {
	var req dto.AgentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Agent(ctx.UserContext(), &req)
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(res)
}
