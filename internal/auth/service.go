package auth

import (
	"log/slog"
	"time"

	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	Register(dto RegisterDTO) (*user.User, AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	CurrentUser(claims *Claims) (*user.User, error)
}

// Repository is the credential-side view of user storage.
type Repository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id uuid.UUID) (*user.User, error)
	Create(u *user.User) error
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: unknown email", "email", dto.Email)
		return AuthTokens{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.logger.Warn("login refused: inactive user", "user_id", u.ID)
		return AuthTokens{}, ErrUserInactive
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: bad password", "user_id", u.ID)
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// Register creates a new member account and signs them in. New accounts
// start at the lowest function; leadership promotes them later.
func (s *Service) Register(dto RegisterDTO) (*user.User, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		s.logger.Warn("registration refused: email taken", "email", dto.Email)
		return nil, AuthTokens{}, ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, AuthTokens{}, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		Nickname:     dto.Nickname,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Function:     user.FunctionMember,
		PatrolID:     dto.PatrolID,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, AuthTokens{}, err
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, tokens, nil
}

// RefreshTokens rotates a valid refresh token into a fresh pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.CurrentUser(claims)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !u.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(u)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// CurrentUser resolves the token claims into a full user record.
func (s *Service) CurrentUser(claims *Claims) (*user.User, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.repo.GetByID(id)
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID.String(), u.Email)
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", u.ID)
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID.String(), u.Email)
	if err != nil {
		s.logger.Error("failed to sign refresh token", "error", err, "user_id", u.ID)
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
