package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
)

// Pinger reports whether the snapshot backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Channels *ChannelHandler
	DMs      *DMHandler
	Messages *MessageHandler
	Admin    *AdminHandler
	Gateway  *gateway.Manager

	Sessions auth.Resolver
	Health   Pinger
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := deps.Health.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	if deps.Gateway != nil {
		e.GET("/gateway", deps.Gateway.HandleWebSocket)
	}

	v1 := e.Group("/api/v1")

	// Auth routes, no session required
	v1.POST("/auth/register", deps.Auth.Register)
	v1.POST("/auth/login", deps.Auth.Login)

	protected := v1.Group("", auth.Middleware(deps.Sessions))

	protected.POST("/auth/logout", deps.Auth.Logout)

	// Users
	protected.GET("/users", deps.Users.ListUsers)
	protected.GET("/users/:id", deps.Users.GetUser)
	protected.PUT("/users/@me/name", deps.Users.SetName)
	protected.PUT("/users/@me/email", deps.Users.SetEmail)
	protected.PUT("/users/@me/handle", deps.Users.SetHandle)

	// Channels
	protected.POST("/channels", deps.Channels.CreateChannel)
	protected.GET("/channels", deps.Channels.ListChannels)
	protected.GET("/channels/all", deps.Channels.ListAllChannels)
	protected.GET("/channels/:id", deps.Channels.GetChannel)
	protected.POST("/channels/:id/join", deps.Channels.JoinChannel)
	protected.POST("/channels/:id/leave", deps.Channels.LeaveChannel)
	protected.POST("/channels/:id/invite", deps.Channels.InviteToChannel)
	protected.POST("/channels/:id/owners", deps.Channels.AddOwner)
	protected.DELETE("/channels/:id/owners/:user_id", deps.Channels.RemoveOwner)
	protected.GET("/channels/:id/messages", deps.Messages.GetChannelMessages)
	protected.POST("/channels/:id/messages", deps.Messages.SendChannelMessage)

	// DMs
	protected.POST("/dms", deps.DMs.CreateDM)
	protected.GET("/dms", deps.DMs.ListDMs)
	protected.GET("/dms/:id", deps.DMs.GetDM)
	protected.POST("/dms/:id/leave", deps.DMs.LeaveDM)
	protected.DELETE("/dms/:id", deps.DMs.RemoveDM)
	protected.GET("/dms/:id/messages", deps.Messages.GetDMMessages)
	protected.POST("/dms/:id/messages", deps.Messages.SendDMMessage)

	// Messages
	protected.PATCH("/messages/:id", deps.Messages.EditMessage)
	protected.DELETE("/messages/:id", deps.Messages.DeleteMessage)

	// Admin
	protected.PUT("/admin/users/:id/permission", deps.Admin.SetPermission)
	protected.DELETE("/admin/users/:id", deps.Admin.RemoveUser)
}
