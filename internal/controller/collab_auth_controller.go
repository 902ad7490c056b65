package controller

import (
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICollabAuthController interface {
	RegisterRoutes(r fiber.Router)
	Authorize(ctx *fiber.Ctx) error
}

type collabAuthController struct {
	service service.ICollabAuthService
}

func NewCollabAuthController(service service.ICollabAuthService) ICollabAuthController {
	return &collabAuthController{service: service}
}

func (c *collabAuthController) RegisterRoutes(r fiber.Router) {
	r.Post("/collab-auth", c.Authorize)
	// Legacy path the collaboration SDK's default client still calls.
	r.Post("/liveblocks-auth", c.Authorize)
}

func (c *collabAuthController) Authorize(ctx *fiber.Ctx) error {
	var req dto.CollabAuthRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Authorize(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
