package handler

import (
	"net/url"

	"sheetroom-be/internal/collab"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/service"
	"sheetroom-be/pkg/rooms"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RoomHandler upgrades websocket connections into room sessions.
type RoomHandler struct {
	authService service.ICollabAuthService
	hub         *collab.Hub
	logger      logger.ILogger
}

func NewRoomHandler(authService service.ICollabAuthService, hub *collab.Hub, log logger.ILogger) *RoomHandler {
	return &RoomHandler{
		authService: authService,
		hub:         hub,
		logger:      log,
	}
}

func (h *RoomHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws/rooms/:roomId", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *RoomHandler) ServeWs(c *fiber.Ctx) error {
	// Room ids carry colons, so they arrive percent-encoded.
	roomId, err := url.PathUnescape(c.Params("roomId"))
	if err != nil || !rooms.IsValid(roomId) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid room id"})
	}

	// 1. Get Token source
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	// 2. Verify the grant
	grant, err := h.authService.VerifyToken(tokenStr)
	if err != nil {
		h.logger.Warn("RoomHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	// 3. The grant must cover this room
	allowed := false
	for _, pattern := range grant.Patterns {
		if rooms.Matches(pattern, roomId) {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Room not covered by grant"})
	}

	userId := grant.UserId

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RoomHandler", "Starting room session", map[string]interface{}{
				"room_id": roomId,
				"user_id": userId,
			})
			collab.ServeWs(h.hub, conn, roomId, userId)
			h.logger.Info("RoomHandler", "Room session ended", map[string]interface{}{
				"room_id": roomId,
				"user_id": userId,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
