package user

import (
	"context"
	"strings"

	"github.com/aliyev12/vistashopverse/internal/config"
	"github.com/aliyev12/vistashopverse/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, name, email, password string) (string, User, error)
	Login(ctx context.Context, email, password string) (string, User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	SaveAddress(ctx context.Context, id uint, addr ShippingAddress) error
	SavePaymentMethod(ctx context.Context, id uint, method string) error
}

type service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Register(ctx context.Context, name, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, name, email, hashed, string(RoleUser))
	if err != nil {
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		if strings.Contains(err.Error(), "users_email_key") {
			return "", User{}, ErrEmailExists
		}
		return "", User{}, err
	}

	token, err := GenerateJWT(u.ID, string(u.Role), email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", User{}, err
	}

	log.Info("register service completed",
		zap.Uint("user_id", u.ID),
		zap.String("email", email),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", User{}, err
	}
	if u == nil {
		log.Warn("login attempt for unknown email")
		return "", User{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Warn("login password mismatch", zap.Uint("user_id", u.ID))
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, string(u.Role), email)
	return token, *u, err
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) SaveAddress(ctx context.Context, id uint, addr ShippingAddress) error {
	if addr.FullName == "" || addr.StreetAddress == "" || addr.City == "" ||
		addr.PostalCode == "" || addr.Country == "" {
		return ErrInvalidAddress
	}
	return s.repo.UpdateAddress(ctx, id, addr)
}

// SavePaymentMethod stores the user's selected method after checking
// it against the configured method set.
func (s *service) SavePaymentMethod(ctx context.Context, id uint, method string) error {
	if !s.cfg.IsPaymentMethodAllowed(method) {
		return ErrInvalidPaymentMethod
	}
	return s.repo.UpdatePaymentMethod(ctx, id, method)
}
