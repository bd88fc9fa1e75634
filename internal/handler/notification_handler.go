package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Sakin08/New-web-sub002/internal/service"
)

type Handler struct {
	svc *service.NotificationService
}

func New(svc *service.NotificationService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "0"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset", "0"), 10, 64)

	notifs, err := h.svc.List(c.Context(), userID(c), limit, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(notifs)
}

func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.svc.UnreadCount(c.Context(), userID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *Handler) MarkRead(c *fiber.Ctx) error {
	if err := h.svc.MarkRead(c.Context(), c.Params("id"), userID(c)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.svc.MarkAllRead(c.Context(), userID(c)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id"), userID(c)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.svc.DeleteAll(c.Context(), userID(c)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
