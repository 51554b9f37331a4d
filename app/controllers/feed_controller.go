package controllers

import (
	"net/http"
	"time"

	"github.com/afandal/storeadmin/pkg/ctx"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/sse"
	"github.com/afandal/storeadmin/pkg/ws"
)

const feedHeartbeat = 25 * time.Second

// FeedController serves the order status feed to signed-in clients, over
// websocket or as Server-Sent Events.
type FeedController struct {
	hub *ws.Hub
}

func NewFeedController(hub *ws.Hub) *FeedController {
	return &FeedController{hub: hub}
}

func (ctl *FeedController) Orders(c *ctx.Context) {
	if Credential(c).Token() == "" {
		c.Unauthorized(UnauthorizedMessage)
		return
	}
	ws.Upgrade(c.W, c.R, ctl.hub)
}

// OrderEvents streams the same feed as text/event-stream.
func (ctl *FeedController) OrderEvents(c *ctx.Context) {
	if Credential(c).Token() == "" {
		c.Unauthorized(UnauthorizedMessage)
		return
	}
	events, err := ctl.hub.Subscribe(c.Context())
	if err != nil {
		c.Error(http.StatusServiceUnavailable, "Order feed is unavailable")
		return
	}
	stream, err := sse.New(c.W, c.R)
	if err != nil {
		logger.WithCtx(c.Context()).Warn("sse: open failed", "error", err)
		return
	}
	if err := stream.Relay(c.Context(), "status", events, feedHeartbeat); err != nil {
		logger.WithCtx(c.Context()).Debug("sse: client gone", "error", err)
	}
}
