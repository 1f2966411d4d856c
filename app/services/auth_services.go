package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/cache"
	"github.com/shashiranjanraj/medcart/pkg/logger"
)

const pharmaciesCacheNS = "pharmacies"

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("medcart-unknown-user")
	return h
})

type RegisterInput struct {
	Name     string `json:"name"     validate:"notblank"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"notblank"`
	Role     string `json:"role"     validate:"required,oneof=customer pharmacy admin"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.Issuer
	cache  *cache.Store
}

func NewAuthService(users repositories.UserRepository, tokens *auth.Issuer, c *cache.Store) *AuthService {
	return &AuthService{users: users, tokens: tokens, cache: c}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The email is stored trimmed and lowercased.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if in.Role != "" && !models.ValidRole(in.Role) {
		return models.User{}, apperr.ValidationFields("Invalid role specified", map[string]string{
			"role": "The selected role is invalid. Allowed: customer, pharmacy, admin.",
		})
	}
	if err := invalid(in, ""); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperr.Internal("Server Error", err)
	}

	u := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, apperr.Conflict("User already exists")
		}
		return models.User{}, apperr.Internal("Server Error", err)
	}

	if u.Role == models.RolePharmacy {
		s.cache.Bump(ctx, pharmaciesCacheNS)
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	fail := apperr.Unauthorized("Invalid credentials")

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, fail
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			auth.CheckPassword(dummyHash(), in.Password)
			return LoginResult{}, fail
		}
		return LoginResult{}, apperr.Internal("Server Error", err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return LoginResult{}, fail
	}

	token, err := s.tokens.Generate(u.ID, u.Role)
	if err != nil {
		return LoginResult{}, apperr.Internal("Server Error", err)
	}
	return LoginResult{Token: token, User: u}, nil
}

// ListPharmacies returns every pharmacy account in public form.
func (s *AuthService) ListPharmacies(ctx context.Context) ([]models.PharmacySummary, error) {
	key, cached := s.cache.Key(ctx, pharmaciesCacheNS, "all")

	var out []models.PharmacySummary
	if cached && s.cache.Get(ctx, key, &out) {
		return out, nil
	}

	users, err := s.users.ListByRole(ctx, models.RolePharmacy)
	if err != nil {
		return nil, apperr.Internal("Server Error", err)
	}
	out = make([]models.PharmacySummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}

	if cached {
		s.cache.Set(ctx, key, out)
	}
	return out, nil
}

// Me returns the account behind a validated token.
func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	if !models.ValidID(userID) {
		return models.User{}, apperr.NotFound("User not found")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	return u, nil
}
