package controller

import (
	"github.com/gofiber/fiber/v2"

	"docmind-be/internal/apperror"
	"docmind-be/internal/pkg/serverutils"
	"docmind-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/upload", c.Upload)
	h.Delete("", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(string)
	displayName := serverutils.DisplayName(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.NewClientInput("No file provided")
	}
	if fileHeader.Filename == "" {
		return apperror.NewClientInput("No filename provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.NewClientInput("Unreadable upload")
	}
	defer file.Close()

	res, err := c.service.Upload(ctx.Context(), userID, displayName, fileHeader.Filename, file)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(string)

	if err := c.service.DeleteDocuments(ctx.Context(), userID); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete documents", nil))
}
