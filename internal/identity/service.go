// Package identity implements the backend's auth capability: credential
// storage, session tokens, and a session-change stream. Sessions are signed
// JWTs persisted to a file so a restart revalidates rather than re-prompts.
package identity

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	errs "github.com/shahpalash10/chore-Mate/internal/errors"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

type Service struct {
	db          *gorm.DB
	secret      []byte
	ttl         time.Duration
	sessionFile string

	mu        sync.Mutex
	current   *remote.Session
	nextID    int
	listeners map[int]func(*remote.Session)
}

func NewService(db *gorm.DB, secret string, ttl time.Duration, sessionFile string) *Service {
	return &Service{
		db:          db,
		secret:      []byte(secret),
		ttl:         ttl,
		sessionFile: sessionFile,
		listeners:   make(map[int]func(*remote.Session)),
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).First(&cred, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, errs.ErrInvalidCredentials
	}

	return s.establish(cred.UserID, cred.Email)
}

// SignUp registers a credential and opens a session. The profile row is the
// caller's responsibility; the users table stays a plain row store here.
func (s *Service) SignUp(ctx context.Context, email, password string) (*remote.Session, error) {
	userID, err := s.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(userID, email)
}

// Register creates a credential without opening a session. Used by SignUp
// and by out-of-band provisioning (the admin seed).
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", errs.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	cred := model.Credential{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return "", err
	}

	return cred.UserID, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	if err := os.Remove(s.sessionFile); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to clear session file: %v", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.emit(nil)
	return nil
}

// Session returns the persisted session, if any. A corrupt token clears the
// file and reports an error so the caller can reset to signed-out.
func (s *Service) Session(ctx context.Context) (*remote.Session, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil {
		return current, nil
	}

	raw, err := os.ReadFile(s.sessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	session, err := s.parseToken(string(raw))
	if err != nil {
		_ = os.Remove(s.sessionFile)
		return nil, errs.ErrSessionExpired
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
	return session, nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}

	// No mailer in this deployment; the dispatch is observable in the log
	// either way so the endpoint does not reveal which emails exist.
	log.Printf("password reset dispatched for %s (account exists: %t)", email, count > 0)
	return nil
}

func (s *Service) UpdatePassword(ctx context.Context, newPassword string) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return errs.ErrNotAuthenticated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("user_id = ?", current.UserID).
		Update("password_hash", string(hash)).Error
}

func (s *Service) SessionChanges(fn func(*remote.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) establish(userID, email string) (*remote.Session, error) {
	token, session, err := s.issueToken(userID, email)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(s.sessionFile, []byte(token), 0o600); err != nil {
		log.Printf("failed to persist session: %v", err)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.emit(session)
	return session, nil
}

func (s *Service) emit(session *remote.Session) {
	s.mu.Lock()
	fns := make([]func(*remote.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		go fn(session)
	}
}
