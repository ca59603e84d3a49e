package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
)

// bcryptPrefix marks a password hash encoded with bcrypt, as written by
// delegating password encoders. Stored hashes may or may not carry it.
const bcryptPrefix = "{bcrypt}"

// ErrEmptyPassword is returned when registering a user without a password.
var ErrEmptyPassword = errors.New("empty password")

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// BcryptCost is the work factor used when hashing new passwords
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// AuthService loads users from the repository and checks their credentials.
// It keeps no session state: every call re-reads the user.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Log      logging.Logger

	// dummyHash is compared against when the user does not exist, so unknown
	// usernames cost as much as wrong passwords.
	dummyHash []byte
}

var _ http_.Authenticator = (*AuthService)(nil)

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy"), cost(cfg))
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthService{
		Config:    cfg,
		UserRepo:  userRepo,
		Log:       logging.GetLogger("svc.authsvc.auth_service"),
		dummyHash: dummyHash,
	}, nil
}

func cost(cfg AuthConfig) int {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}

	return cfg.BcryptCost
}

// HashPassword hashes password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// RegisterUser stores a new user with a bcrypt hash of password.
// Returns domain.ErrUserAlreadyExists if the username is taken.
func (s *AuthService) RegisterUser(
	ctx context.Context,
	name, username, password string,
	roles domain.Roles,
) (_ domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username, "roles", roles.String()))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if username == "" {
		return domain.User{}, domain.NewValidationError("username", "The username cannot be empty")
	}

	if password == "" {
		return domain.User{}, ErrEmptyPassword
	}

	hash, err := HashPassword(password, cost(s.Config))
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.UserRepo.CreateUser(ctx, domain.User{
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Authorities:  roles,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Authenticate implements http.Authenticator. It returns domain.ErrInvalidCredentials
// for an unknown user or a wrong password, and a wrapped error if the
// repository fails.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (_ domain.Principal, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.WarnContext(ctx, "authentication rejected", "error", err)
		case err != nil:
			log.ErrorContext(ctx, "authentication failed", "error", err)
		default:
			log.DebugContext(ctx, "authenticated")
		}
	}()

	found, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))

			return domain.Principal{}, errors.Join(domain.ErrInvalidCredentials, err)
		}

		return domain.Principal{}, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	hash := strings.TrimPrefix(found.PasswordHash, bcryptPrefix)

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Principal{}, domain.ErrInvalidCredentials
		}

		return domain.Principal{}, fmt.Errorf("compare password: %w", err)
	}

	return domain.Principal{
		Username: found.Username,
		Name:     found.Name,
		Roles:    found.Authorities,
	}, nil
}
