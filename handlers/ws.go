package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"hackmate/middleware"
	"hackmate/ws"
)

var hub = ws.NewHub()

// WebSocketUpgrade authenticates the upgrade request. Browsers cannot set
// headers on WebSocket connections, so the token rides a query parameter.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, err := middleware.ParseToken(c.Query("token"))
	if err != nil {
		return fiber.ErrUnauthorized
	}

	c.Locals("userId", userID)
	return c.Next()
}

// WebSocketHandler holds the connection open and registers it with the
// hub. The server only pushes; inbound frames are drained and ignored.
var WebSocketHandler = websocket.New(func(conn *websocket.Conn) {
	userID, ok := conn.Locals("userId").(uint)
	if !ok || userID == 0 {
		conn.Close()
		return
	}

	hub.AddConnection(userID, conn)
	defer hub.RemoveConnection(userID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
})
