package controllers

import (
	"net/http"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/pkg/ctx"
)

type OfferController struct {
	service *services.OfferService
}

func NewOfferController(service *services.OfferService) *OfferController {
	return &OfferController{service: service}
}

// Index returns the offers board.
func (ctl *OfferController) Index(c *ctx.Context) {
	board, err := ctl.service.Board(c.Context(), Credential(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(board)
}

func (ctl *OfferController) Store(c *ctx.Context) {
	var in models.NewOffer
	if !c.BindJSON(&in) {
		return
	}
	msg, err := ctl.service.Create(c.Context(), Credential(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, msg, nil)
}

func (ctl *OfferController) Destroy(c *ctx.Context) {
	msg, err := ctl.service.Delete(c.Context(), Credential(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, msg, nil)
}
