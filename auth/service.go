package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/krishkalaria12/car-vault/config"
	"github.com/krishkalaria12/car-vault/models"
)

const (
	tokenDuration  = time.Hour * 24
	cookieDuration = time.Hour * 24 * 7
	issuer         = "car-vault-app"
)

// Service wraps go-pkgz/auth with account management backed by the users
// table. It is constructed once in main and injected; there is no global
// instance.
type Service struct {
	svc      *auth.Service
	db       *gorm.DB
	notifier *Notifier
	attempts *attemptLimiter
}

func NewService(cfg *config.Config, db *gorm.DB) *Service {
	s := &Service{db: db, notifier: NewNotifier(), attempts: newAttemptLimiter()}

	options := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return cfg.JWTSecret, nil
		}),
		TokenDuration:  tokenDuration,
		CookieDuration: cookieDuration,
		Issuer:         issuer,
		URL:            cfg.AppURL,
		AvatarStore:    avatar.NewLocalFS("/tmp/avatars"),
	}

	service := auth.NewService(options)

	service.AddDirectProvider("local", provider.CredCheckerFunc(func(identity, password string) (bool, error) {
		_, err := s.Authenticate(context.Background(), identity, password)
		if err != nil {
			if IsAuthError(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}))

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		service.AddProvider("google", cfg.GoogleClientID, cfg.GoogleClientSecret)
	}

	s.svc = service
	return s
}

// Handlers exposes go-pkgz/auth's provider sign-in and avatar routes for
// mounting under /auth and /avatar.
func (s *Service) Handlers() (authRoutes http.Handler, avatarRoutes http.Handler) {
	return s.svc.Handlers()
}

// TokenService exposes the JWT issue/parse service for the middleware.
func (s *Service) TokenService() *token.Service {
	return s.svc.TokenService()
}

// Notifier returns the session-change channel owner.
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// CreateAccount registers a new user. Password policy and duplicate-email
// detection mirror the sign-up form rules.
func (s *Service) CreateAccount(ctx context.Context, name, email, password string) (*models.User, error) {
	if !isEmail(email) {
		return nil, &Error{Code: CodeInvalidEmail}
	}
	if len(password) < 6 {
		return nil, &Error{Code: CodeWeakPassword}
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return nil, &Error{Code: CodeEmailInUse}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Name:     name,
		Password: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(SessionEvent{UserID: user.ID, SignedIn: true, At: time.Now()})
	return &user, nil
}

// Authenticate validates email/password credentials against the users table.
// Repeated failures for the same email lock the account out for a window.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if !isEmail(email) {
		return nil, &Error{Code: CodeInvalidEmail}
	}
	if s.attempts.locked(email) {
		return nil, &Error{Code: CodeTooManyRequests}
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.attempts.record(email)
			return nil, &Error{Code: CodeUserNotFound}
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.attempts.record(email)
		return nil, &Error{Code: CodeWrongPassword}
	}

	s.attempts.reset(email)
	s.notifier.Publish(SessionEvent{UserID: user.ID, SignedIn: true, At: time.Now()})
	return &user, nil
}

// SignOut only raises the session-change event; token invalidation is the
// cookie's job.
func (s *Service) SignOut(userID string) {
	s.notifier.Publish(SessionEvent{UserID: userID, SignedIn: false, At: time.Now()})
}

// CurrentUser loads the user behind a parsed token identity.
func (s *Service) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Code: CodeUserNotFound}
		}
		return nil, err
	}
	return &user, nil
}

// IssueToken creates a JWT for the given user.
func (s *Service) IssueToken(user *models.User) (string, error) {
	claims := token.Claims{
		User: &token.User{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.svc.TokenService().Issuer,
			Audience:  []string{issuer},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return s.svc.TokenService().Token(claims)
}

func isEmail(identity string) bool {
	_, err := mail.ParseAddress(identity)
	return err == nil
}
