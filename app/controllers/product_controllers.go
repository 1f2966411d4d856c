package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/ctx"
)

type ProductController struct {
	svc *services.ProductService
}

func NewProductController(svc *services.ProductService) *ProductController {
	return &ProductController{svc: svc}
}

// Index handles GET /api/products?pharmacy=.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.svc.List(c.Context(), c.Query("pharmacy"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

func (pc *ProductController) Store(c *ctx.Context) {
	var input services.CreateProductInput
	if !c.DecodeJSON(&input) {
		return
	}

	p, err := pc.svc.Create(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(p)
}

func (pc *ProductController) Update(c *ctx.Context) {
	var input services.UpdateProductInput
	if !c.DecodeJSON(&input) {
		return
	}

	p, err := pc.svc.Update(c.Context(), c.Param("id"), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.svc.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product deleted successfully")
}

// Buy handles POST /api/products/{id}/buy, taking one unit out of stock.
func (pc *ProductController) Buy(c *ctx.Context) {
	res, err := pc.svc.Buy(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Product purchased successfully", res)
}
