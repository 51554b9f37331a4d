package controllers

import (
	"net/http"

	"github.com/afandal/storeadmin/app/orderstatus"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/pkg/ctx"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

func (ctl *OrderController) Index(c *ctx.Context) {
	orders, err := ctl.service.List(c.Context(), Credential(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

// UpdateStatus accepts either a display label or a status code.
func (ctl *OrderController) UpdateStatus(c *ctx.Context) {
	var in services.StatusRequest
	if !c.BindJSON(&in) {
		return
	}
	view, err := ctl.service.UpdateStatus(c.Context(), Credential(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Status updated", view)
}

// Statuses lists the status selector options.
func (ctl *OrderController) Statuses(c *ctx.Context) {
	c.Success(orderstatus.Options())
}
