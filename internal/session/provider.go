package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// tokenTTL matches the session lifetime of the hosted auth this replaces.
const tokenTTL = 72 * time.Hour

// ErrInvalidCredentials is returned by SignIn for a wrong email or password.
var ErrInvalidCredentials = errors.New("Geçersiz email veya şifre.")

// User is the session view of a member: the profile plus gamification state.
type User struct {
	models.User
	Points int64              `json:"points"`
	Level  models.MemberLevel `json:"level"`
}

// Listener is notified whenever a session's signed-in user changes; nil
// means signed out.
type Listener func(user *User)

// Provider performs the auth operations. It is stateless and shared across
// all clients; per-client signed-in state lives in a Session so one caller's
// sign-out can never clear another's.
type Provider struct {
	users     repositories.UserRepository
	pts       repositories.PointsRepository
	jwtSecret []byte
	logger    *zap.Logger
}

func NewProvider(users repositories.UserRepository, pts repositories.PointsRepository, logger *zap.Logger) *Provider {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey" // must match the signing secret
	}
	return &Provider{
		users:     users,
		pts:       pts,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// NewSession returns fresh per-client session state backed by this provider.
func (p *Provider) NewSession() *Session {
	return &Session{
		provider:  p,
		listeners: make(map[int]Listener),
	}
}

// SignUp registers a new member. Known failure shapes are mapped to Turkish
// messages; everything else passes through verbatim.
func (p *Provider) SignUp(ctx context.Context, username, email, password string) (*User, string, error) {
	if _, err := p.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", errors.New("Bu email adresi zaten kullanılıyor.")
	}
	if _, err := p.users.GetUserByUsername(ctx, username); err == nil {
		return nil, "", errors.New("Bu kullanıcı adı zaten kullanılıyor.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", MapAuthError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := p.users.CreateUser(ctx, user); err != nil {
		return nil, "", MapAuthError(err)
	}

	return p.establish(ctx, user)
}

// SignIn authenticates with email and password.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", MapAuthError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	return p.establish(ctx, user)
}

// Verify parses a previously issued token and returns its claims.
func (p *Provider) Verify(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("Oturum doğrulanamadı.")
	}
	return claims, nil
}

// IssueToken signs a session token for the user.
func (p *Provider) IssueToken(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.jwtSecret)
}

func (p *Provider) establish(ctx context.Context, user *models.User) (*User, string, error) {
	tokenString, err := p.IssueToken(user)
	if err != nil {
		return nil, "", MapAuthError(err)
	}
	return p.enrich(ctx, user.ID, &User{User: *user}), tokenString, nil
}

// enrich loads the stored profile and points. Failures fall back to the
// session-derived user without surfacing any error.
func (p *Provider) enrich(ctx context.Context, userID string, fallback *User) *User {
	user, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		p.logger.Debug("profile enrichment failed, using session data",
			zap.String("user_id", userID), zap.Error(err))
		return fallback
	}
	enriched := &User{User: *user}
	if pts, err := p.pts.GetPoints(ctx, userID); err == nil {
		enriched.Points = pts
	} else {
		p.logger.Debug("points enrichment failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	enriched.Level = points.LevelFor(enriched.Points)
	return enriched
}

// Session holds the signed-in user for one client. Sign-in installs a
// usable user immediately, then enrichment replaces it; listeners see every
// transition.
type Session struct {
	provider *Provider

	mu        sync.Mutex
	user      *User
	listeners map[int]Listener
	nextID    int
}

// SignUp registers a new member and signs this session in.
func (s *Session) SignUp(ctx context.Context, username, email, password string) (*User, string, error) {
	user, token, err := s.provider.SignUp(ctx, username, email, password)
	if err != nil {
		return nil, "", err
	}
	s.setUser(user)
	return user, token, nil
}

// SignIn authenticates and signs this session in.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	user, token, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	s.setUser(user)
	return user, token, nil
}

// SignOut drops this session's user and notifies its listeners. Other
// sessions are untouched.
func (s *Session) SignOut() {
	s.setUser(nil)
}

// Resume rebuilds the session from a previously issued token: the
// claims-derived user is installed immediately, then enriched.
func (s *Session) Resume(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.provider.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	// minimal user from claims so the session is usable immediately
	minimal := &User{User: models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}}
	s.setUser(minimal)

	enriched := s.provider.enrich(ctx, claims.UserID, minimal)
	s.setUser(enriched)
	return enriched, nil
}

// CurrentUser returns the signed-in user, nil when signed out.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// OnAuthStateChange registers a listener for sign-in/out transitions and
// returns its unsubscribe function.
func (s *Session) OnAuthStateChange(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) setUser(user *User) {
	s.mu.Lock()
	s.user = user
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

// MapAuthError translates known auth failure shapes into the fixed Turkish
// messages; unrecognized errors pass through verbatim.
func MapAuthError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key"):
		return errors.New("Bu email adresi zaten kullanılıyor.")
	case strings.Contains(msg, "invalid email"):
		return errors.New("Geçersiz email adresi.")
	case strings.Contains(msg, "weak password"):
		return errors.New("Şifre çok zayıf.")
	case strings.Contains(msg, "Database error"):
		return errors.New("Veritabanı hatası. Lütfen daha sonra tekrar deneyin.")
	}
	return err
}
