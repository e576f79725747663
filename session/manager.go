// Package session handles accounts, credential checks, and JWT-backed
// login sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"leadflow/access"
	"leadflow/cache"
	"leadflow/goal"
	"leadflow/mirror"
)

var (
	// ErrInvalidCredentials signals wrong display name or password.
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrValidation         = errors.New("session: validation failed")
	ErrDuplicateName      = errors.New("session: display name already taken")
	ErrUserNotFound       = errors.New("session: user not found")
)

const tokenLifetime = 24 * time.Hour

// Manager owns the user directory and issues session tokens. Users live in
// memory; the mirror and cache are best-effort and may be nil.
type Manager struct {
	mu     sync.RWMutex
	users  map[string]*User
	byName map[string]string

	verifier  CredentialVerifier
	jwtSecret []byte
	mirror    *mirror.Writer
	cache     *cache.Client

	idGenerator func() string
	now         func() time.Time
}

// NewManager builds a manager with bcrypt credential storage.
func NewManager(jwtSecret string, writer *mirror.Writer, sessions *cache.Client) *Manager {
	return &Manager{
		users:       make(map[string]*User),
		byName:      make(map[string]string),
		verifier:    BcryptVerifier{},
		jwtSecret:   []byte(jwtSecret),
		mirror:      writer,
		cache:       sessions,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

// WithVerifier swaps the credential scheme, e.g. PlainVerifier for data
// imported from the legacy system.
func (m *Manager) WithVerifier(v CredentialVerifier) *Manager {
	m.verifier = v
	return m
}

func (m *Manager) WithIDGenerator(gen func() string) *Manager {
	m.idGenerator = gen
	return m
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Register creates an account. WeeklyGoal only applies to canvassers and is
// zeroed for everyone else.
func (m *Manager) Register(ctx context.Context, displayName, password string, role access.Role, weeklyGoal int) (User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return User{}, fmt.Errorf("session: register: display name is required: %w", ErrValidation)
	}
	if password == "" {
		return User{}, fmt.Errorf("session: register: password is required: %w", ErrValidation)
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("session: register: invalid role %q: %w", role, ErrValidation)
	}
	if role != access.RoleCanvasser {
		weeklyGoal = 0
	}

	secret, err := m.verifier.Hash(password)
	if err != nil {
		return User{}, fmt.Errorf("session: register: hash password: %w", err)
	}

	m.mu.Lock()
	if _, taken := m.byName[displayName]; taken {
		m.mu.Unlock()
		return User{}, fmt.Errorf("session: register: %q: %w", displayName, ErrDuplicateName)
	}
	user := &User{
		ID:          m.idGenerator(),
		DisplayName: displayName,
		Role:        role,
		Secret:      secret,
		WeeklyGoal:  weeklyGoal,
	}
	m.users[user.ID] = user
	m.byName[displayName] = user.ID
	created := *user
	m.mu.Unlock()

	m.mirror.Insert(mirror.CollectionUsers, created.ID, docFromUser(created))
	return created, nil
}

// Login authenticates by display name and returns a signed session.
func (m *Manager) Login(ctx context.Context, displayName, password string) (Session, error) {
	m.mu.RLock()
	id, ok := m.byName[strings.TrimSpace(displayName)]
	var user User
	if ok {
		user = *m.users[id]
	}
	m.mu.RUnlock()

	if !ok || !m.verifier.Verify(user.Secret, password) {
		return Session{}, ErrInvalidCredentials
	}

	token, err := m.generateToken(user.ID, user.Role)
	if err != nil {
		return Session{}, fmt.Errorf("session: login: generate token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

// Logout clears the user's session-scoped cache entries. Domain data is
// untouched.
func (m *Manager) Logout(ctx context.Context, user User) {
	m.cache.Delete(ctx, goal.CacheKey(user.DisplayName))
	m.cache.Delete(ctx, openChannelKey(user.DisplayName))
}

// RememberOpenChannel stores which channel the user last had open.
func (m *Manager) RememberOpenChannel(ctx context.Context, displayName, channelID string) {
	m.cache.Set(ctx, openChannelKey(displayName), []byte(channelID), tokenLifetime)
}

// OpenChannel returns the remembered channel selection, if any.
func (m *Manager) OpenChannel(ctx context.Context, displayName string) (string, bool) {
	payload := m.cache.Get(ctx, openChannelKey(displayName))
	if payload == nil {
		return "", false
	}
	return string(payload), true
}

// GetUser retrieves an account by ID.
func (m *Manager) GetUser(ctx context.Context, userID string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return User{}, fmt.Errorf("session: get user %q: %w", userID, ErrUserNotFound)
	}
	return *user, nil
}

// FindByName retrieves an account by display name.
func (m *Manager) FindByName(ctx context.Context, displayName string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[displayName]
	if !ok {
		return User{}, fmt.Errorf("session: find %q: %w", displayName, ErrUserNotFound)
	}
	return *m.users[id], nil
}

// ListUsers returns every account without secrets.
func (m *Manager) ListUsers(ctx context.Context) []User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		public := *u
		public.Secret = ""
		out = append(out, public)
	}
	return out
}

// VerifyToken validates a session token and returns the user ID and role.
func (m *Manager) VerifyToken(tokenString string) (string, access.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("session: parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("session: invalid token")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", "", fmt.Errorf("session: invalid user_id in token")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", "", fmt.Errorf("session: invalid role in token")
	}
	role, err := access.ParseRole(roleStr)
	if err != nil {
		return "", "", fmt.Errorf("session: invalid role in token: %w", err)
	}
	return userID, role, nil
}

func (m *Manager) generateToken(userID string, role access.Role) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     now.Add(tokenLifetime).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.jwtSecret)
}

func openChannelKey(displayName string) string {
	return "channel:open:" + displayName
}

func docFromUser(u User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"displayName": u.DisplayName,
		"role":        string(u.Role),
		"weeklyGoal":  u.WeeklyGoal,
	}
}
