package controller

import (
	"github.com/gofiber/fiber/v2"

	"docmind-be/internal/dto"
	"docmind-be/internal/pkg/serverutils"
	"docmind-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/query", c.Query)
	h.Get("/summary", c.Summarize)
	h.Delete("/history", c.ClearHistory)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(string)
	displayName := serverutils.DisplayName(ctx)

	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.Context(), userID, displayName, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) Summarize(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(string)
	displayName := serverutils.DisplayName(ctx)

	res, err := c.service.Summarize(ctx.Context(), userID, displayName)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(string)

	c.service.ClearHistory(userID)

	return ctx.JSON(serverutils.SuccessResponse[any]("Chat history cleared", nil))
}
