package auth

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUserExists           = errors.New("username already exists")
	ErrRegistrationDisabled = errors.New("registration disabled")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

// User is an account known to the server.
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	Groups       []string  `json:"groups"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an authenticated login. The ID doubles as the bearer token.
type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	Username  string       `json:"username"`
	Groups    []string     `json:"groups"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Options configures a Service.
type Options struct {
	SessionTTL    time.Duration
	DefaultGroups []string
	AllowRegister bool
	// Cost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	Cost    int
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Now     func() time.Time
}

// Service keeps users and sessions in memory.
type Service struct {
	opts     Options
	logger   *zap.Logger
	users    sync.Map // username -> *User
	sessions sync.Map // id.SessionID -> *Session
	mu       sync.Mutex
}

// NewService creates an auth service.
func NewService(opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{opts: opts, logger: opts.Logger}
}

// AllowRegister reports whether self-registration is enabled.
func (s *Service) AllowRegister() bool {
	return s.opts.AllowRegister
}

// Register creates a user. Nil groups means the configured default groups.
func (s *Service) Register(username, password string, groups []string) (*User, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if groups == nil {
		groups = s.opts.DefaultGroups
	}
	user := &User{
		ID:           id.NewUserID(),
		Username:     username,
		Groups:       slices.Clone(groups),
		PasswordHash: string(hash),
		CreatedAt:    s.opts.Now(),
	}

	if _, loaded := s.users.LoadOrStore(username, user); loaded {
		return nil, ErrUserExists
	}

	s.logger.Info("User registered", zap.String("username", username), zap.Strings("groups", user.Groups))
	return user, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(username, password string) (*Session, error) {
	v, ok := s.users.Load(username)
	if !ok {
		s.opts.Metrics.RecordLogin("failure")
		return nil, ErrInvalidCredentials
	}
	user := v.(*User)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.opts.Metrics.RecordLogin("failure")
		return nil, ErrInvalidCredentials
	}

	now := s.opts.Now()
	session := &Session{
		ID:        id.NewSessionID(),
		UserID:    user.ID,
		Username:  user.Username,
		Groups:    slices.Clone(user.Groups),
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	s.sessions.Store(session.ID, session)

	s.opts.Metrics.RecordLogin("success")
	s.updateGauge()
	s.logger.Debug("Session opened", zap.String("username", username))
	return session, nil
}

// Verify resolves a token to its live session. Expired sessions are removed.
func (s *Service) Verify(token string) (*Session, error) {
	if !id.HasPrefix(token, id.SessionPrefix) {
		return nil, ErrSessionNotFound
	}

	v, ok := s.sessions.Load(id.SessionID(token))
	if !ok {
		return nil, ErrSessionNotFound
	}
	session := v.(*Session)

	if session.Expired(s.opts.Now()) {
		s.sessions.Delete(session.ID)
		s.updateGauge()
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Logout ends a session. It reports whether the session existed.
func (s *Service) Logout(token string) bool {
	_, ok := s.sessions.LoadAndDelete(id.SessionID(token))
	if ok {
		s.updateGauge()
	}
	return ok
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Service) Sweep() int {
	now := s.opts.Now()
	removed := 0

	s.sessions.Range(func(key, value any) bool {
		if value.(*Session).Expired(now) {
			s.sessions.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		s.updateGauge()
		s.logger.Debug("Expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// ActiveSessions counts stored sessions.
func (s *Service) ActiveSessions() int {
	n := 0
	s.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *Service) updateGauge() {
	if s.opts.Metrics == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Metrics.SetSessionsActive(s.ActiveSessions())
}
