package controller

import (
	"fmt"
	"strconv"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultMaxAgeHours = 24

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Cleanup(ctx *fiber.Ctx) error
	IndexProducts(ctx *fiber.Ctx) error
	CountProducts(ctx *fiber.Ctx) error
	ListProducts(ctx *fiber.Ctx) error
	GetProduct(ctx *fiber.Ctx) error
}

type adminController struct {
	speechService  service.ISpeechService
	catalogService service.ICatalogService
	auth           fiber.Handler
}

func NewAdminController(speechService service.ISpeechService, catalogService service.ICatalogService, auth fiber.Handler) IAdminController {
	return &adminController{
		speechService:  speechService,
		catalogService: catalogService,
		auth:           auth,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(c.auth)
	h.Post("/cleanup", c.Cleanup)
	h.Post("/products", c.IndexProducts)
	h.Get("/products", c.ListProducts)
	h.Get("/products/count", c.CountProducts)
	h.Get("/products/:id", c.GetProduct)
}

func (c *adminController) Cleanup(ctx *fiber.Ctx) error {
	hours := defaultMaxAgeHours
	if raw := ctx.Query("max_age_hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return serverutils.BadRequest("max_age_hours must be a non-negative integer")
		}
		hours = n
	}

	deleted, err := c.speechService.CleanupAudio(ctx.UserContext(), time.Duration(hours)*time.Hour, "admin")
	if err != nil {
		return err
	}

	return ctx.JSON(dto.CleanupResponse{
		DeletedCount: deleted,
		Message:      fmt.Sprintf("Deleted %d old audio files", deleted),
	})
}

func (c *adminController) IndexProducts(ctx *fiber.Ctx) error {
	var req dto.IndexProductsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.Enqueue(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Products queued for indexing", res))
}

func (c *adminController) CountProducts(ctx *fiber.Ctx) error {
	n, err := c.catalogService.Count(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Catalog size", fiber.Map{"count": n}))
}

func (c *adminController) ListProducts(ctx *fiber.Ctx) error {
	var query dto.ProductListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.catalogService.List(ctx.UserContext(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Products", res))
}

func (c *adminController) GetProduct(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Product", res))
}
