package service

import (
	"context"
	"fmt"
	"strings"

	"amoria/internal/domain"
	"amoria/internal/security"
)

// AuthService handles registration and login.
type AuthService struct {
	users    domain.UserRepository
	profiles domain.ProfileRepository
	tokens   *security.TokenService
	hash     *security.PasswordHasher
}

func NewAuthService(
	users domain.UserRepository,
	profiles domain.ProfileRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
) *AuthService {
	return &AuthService{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		hash:     hash,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Age         int
	Gender      string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
	Profile     *domain.Profile
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Email == "" || in.Password == "" || in.DisplayName == "" || in.Gender == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Age < 18 || in.Age > 100 {
		return nil, domain.ErrInvalidInput
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, domain.ErrConflict
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:          in.Email,
		HashedPassword: hashed,
		Status:         domain.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:      user.ID,
		DisplayName: in.DisplayName,
		Age:         in.Age,
		Gender:      in.Gender,
		MinAge:      18,
		MaxAge:      100,
		MaxDistanceKM: 50,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
		Profile:     profile,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(in.Email)))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if user.Status != domain.StatusActive {
		return nil, domain.ErrForbidden
	}

	if err := s.users.TouchLastActive(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("touch last active: %w", err)
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
		Profile:     profile,
	}, nil
}
