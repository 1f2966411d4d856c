package controllers

import (
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/ctx"
	"github.com/shashiranjanraj/medcart/pkg/middleware"
)

type AuthController struct {
	svc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(c *ctx.Context) {
	var input services.RegisterInput
	if !c.DecodeJSON(&input) {
		return
	}

	user, err := ac.svc.Register(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("User registered successfully", user)
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *ctx.Context) {
	var input services.LoginInput
	if !c.DecodeJSON(&input) {
		return
	}

	res, err := ac.svc.Login(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Login successful", res)
}

func (ac *AuthController) Pharmacies(c *ctx.Context) {
	list, err := ac.svc.ListPharmacies(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(list, len(list))
}

// Me returns the bearer's profile. Runs behind middleware.Auth.
func (ac *AuthController) Me(c *ctx.Context) {
	id, ok := middleware.UserIDFromCtx(c.R)
	if !ok {
		c.Unauthorized()
		return
	}

	user, err := ac.svc.Me(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}
