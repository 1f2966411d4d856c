package controllers

import (
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/ctx"
)

type PurchaseController struct {
	svc *services.PurchaseService
}

func NewPurchaseController(svc *services.PurchaseService) *PurchaseController {
	return &PurchaseController{svc: svc}
}

func (pc *PurchaseController) Store(c *ctx.Context) {
	var input services.PurchaseInput
	if !c.DecodeJSON(&input) {
		return
	}

	p, err := pc.svc.Create(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Purchase created successfully", p)
}

// ByPharmacy handles GET /api/purchases/pharmacy/{name}.
func (pc *PurchaseController) ByPharmacy(c *ctx.Context) {
	list, err := pc.svc.ListByPharmacy(c.Context(), c.Param("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(list, len(list))
}

func (pc *PurchaseController) Show(c *ctx.Context) {
	p, err := pc.svc.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (pc *PurchaseController) UpdateStatus(c *ctx.Context) {
	var input struct {
		Status string `json:"status"`
	}
	if !c.DecodeJSON(&input) {
		return
	}

	p, err := pc.svc.UpdateStatus(c.Context(), c.Param("id"), input.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Purchase status updated", p)
}

func (pc *PurchaseController) UpdateAddress(c *ctx.Context) {
	var input struct {
		ShippingAddress *services.AddressInput `json:"shippingAddress"`
	}
	if !c.DecodeJSON(&input) {
		return
	}

	p, err := pc.svc.UpdateAddress(c.Context(), c.Param("id"), input.ShippingAddress)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Shipping address updated", p)
}
