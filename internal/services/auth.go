package services

import (
	"context"
	"errors"
	"strings"

	"inpstories/internal/apperr"
	"inpstories/internal/auth"
	"inpstories/internal/logger"
	"inpstories/internal/models"
	"inpstories/internal/utils"
	"inpstories/internal/validator"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Promotion string `json:"promotion" validate:"required"`
}

type AuthService struct {
	db     *gorm.DB
	tokens *auth.JWTManager
	log    zerolog.Logger
}

func NewAuthService(conn *gorm.DB, tokens *auth.JWTManager) *AuthService {
	return &AuthService{db: conn, tokens: tokens, log: logger.WithComponent("auth")}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in *RegisterInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Promotion = strings.TrimSpace(in.Promotion)
	return validator.Validate(in)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.AuthUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return nil, apperr.Wrap(err, "check email")
	}
	if taken > 0 {
		return nil, apperr.Validation("email is already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}

	user := models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Avatar:    utils.RandomAvatar(),
		Promotion: in.Promotion,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Wrap(err, "create user")
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.withToken(&user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, "load user")
	}
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return s.withToken(&user)
}

// FindUser resolves the user behind a verified token.
func (s *AuthService) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user", id, "load user")
	}
	return &user, nil
}

func (s *AuthService) withToken(user *models.User) (*models.AuthUser, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "issue token")
	}
	out := Profile(user)
	out.Token = token
	return out, nil
}

// Profile is the account view returned by /auth/me, without a token.
func Profile(user *models.User) *models.AuthUser {
	return &models.AuthUser{
		AuthorView: user.Display(),
		Email:      user.Email,
		CreatedAt:  user.CreatedAt,
	}
}
