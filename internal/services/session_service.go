package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	errs "github.com/shahpalash10/chore-Mate/internal/errors"
	model "github.com/shahpalash10/chore-Mate/internal/models"
	"github.com/shahpalash10/chore-Mate/internal/remote"
)

type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateProfilePending SessionState = "profile-pending"
	StateReady          SessionState = "ready"
	StateError          SessionState = "error"
)

// SessionService drives the auth lifecycle: it owns the current session and
// profile and moves through anonymous → authenticating → profile-pending →
// ready. A watchdog bounds startup so a stalled backend cannot leave the
// app on a spinner forever.
type SessionService struct {
	identity    remote.Identity
	users       remote.UserStore
	initTimeout time.Duration

	mu       sync.Mutex
	state    SessionState
	session  *remote.Session
	profile  *model.User
	lastErr  string
	loading  bool // single-flight guard for profile fetches
	watchdog *time.Timer

	unsubscribe func()
	onState     []func(SessionState)
}

func NewSessionService(identity remote.Identity, users remote.UserStore, initTimeout time.Duration) *SessionService {
	return &SessionService{
		identity:    identity,
		users:       users,
		initTimeout: initTimeout,
		state:       StateAnonymous,
	}
}

// Init restores a persisted session, if any. The session is honored only
// when its expiry is in the future; anything stale or corrupt is discarded
// and the service settles at anonymous.
func (s *SessionService) Init(ctx context.Context) {
	s.unsubscribe = s.identity.SessionChanges(s.handleSessionChange)

	s.mu.Lock()
	s.watchdog = time.AfterFunc(s.initTimeout, s.forceTimeout)
	s.mu.Unlock()

	session, err := s.identity.Session(ctx)
	if err != nil {
		log.Printf("session restore failed: %v", err)
		_ = s.identity.SignOut(ctx)
		s.resetToAnonymous("")
		return
	}
	if session == nil {
		s.resetToAnonymous("")
		return
	}
	if session.Expired(time.Now()) {
		log.Printf("persisted session expired, signing out")
		_ = s.identity.SignOut(ctx)
		s.resetToAnonymous("")
		return
	}

	s.beginProfileLoad(ctx, session)
}

// Stop tears down the session-change subscription and the watchdog.
func (s *SessionService) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.stopWatchdog()
}

func (s *SessionService) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errs.ErrMissingCredentials
	}

	s.setState(StateAuthenticating, "")

	session, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		s.resetToAnonymous(err.Error())
		return err
	}

	s.beginProfileLoad(ctx, session)
	return nil
}

// Signup creates the credential and the profile row. Signups are always
// employees; admins are provisioned out of band.
func (s *SessionService) Signup(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return errs.ErrMissingFields
	}

	s.setState(StateAuthenticating, "")

	session, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		s.resetToAnonymous(err.Error())
		return err
	}

	profile := &model.User{
		ID:    session.UserID,
		Name:  name,
		Email: email,
		Role:  constants.RoleEmployee,
	}
	if err := s.users.InsertUser(ctx, profile); err != nil {
		s.resetToAnonymous("signup failed, please try again")
		return err
	}

	s.beginProfileLoad(ctx, session)
	return nil
}

func (s *SessionService) Logout(ctx context.Context) {
	if err := s.identity.SignOut(ctx); err != nil {
		log.Printf("logout error: %v", err)
	}
	s.resetToAnonymous("")
}

func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return errs.ErrEmailRequired
	}
	return s.identity.RequestPasswordReset(ctx, email)
}

func (s *SessionService) ChangePassword(ctx context.Context, newPassword, confirm string) error {
	if newPassword == "" || confirm == "" {
		return errs.ErrMissingFields
	}
	if newPassword != confirm {
		return errs.ErrPasswordMismatch
	}
	if len(newPassword) < 6 {
		return errs.ErrPasswordTooShort
	}
	return s.identity.UpdatePassword(ctx, newPassword)
}

func (s *SessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns the profile once the session is ready, nil otherwise.
func (s *SessionService) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil
	}
	return s.profile
}

func (s *SessionService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnState registers an observer for state transitions.
func (s *SessionService) OnState(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = append(s.onState, fn)
}

// handleSessionChange reacts to the identity service's stream. A present
// session starts a profile load unless one is already in flight; the late
// notification is dropped, not queued. A nil session resets everything.
func (s *SessionService) handleSessionChange(session *remote.Session) {
	if session == nil {
		s.resetToAnonymous("")
		return
	}
	s.beginProfileLoad(context.Background(), session)
}

func (s *SessionService) beginProfileLoad(ctx context.Context, session *remote.Session) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		log.Printf("profile already loading, skipping")
		return
	}
	// A repeated "session present" notification for the user already signed
	// in carries no new information.
	if s.state == StateReady && s.session != nil && s.session.UserID == session.UserID {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.session = session
	s.state = StateProfilePending
	s.mu.Unlock()
	s.notifyState(StateProfilePending)

	s.loadProfile(ctx, session)
}

func (s *SessionService) loadProfile(ctx context.Context, session *remote.Session) {
	profile, err := s.users.GetUser(ctx, session.UserID)

	s.mu.Lock()
	// A sign-out or a newer sign-in may have superseded this fetch while it
	// was in flight. A stale result must not touch state: the current
	// session's own fetch owns the loading flag now.
	if s.session == nil || s.session.UserID != session.UserID {
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		log.Printf("failed to load profile for %s: %v", session.UserID, err)
		_ = s.identity.SignOut(ctx)
		s.resetToAnonymous(errs.ErrProfileNotFound.Error())
		return
	}

	// The watchdog may have forced anonymous while the fetch was running;
	// a late success must not resurrect the session.
	if s.state != StateProfilePending {
		s.mu.Unlock()
		return
	}

	s.profile = profile
	s.state = StateReady
	s.lastErr = ""
	s.mu.Unlock()

	s.stopWatchdog()
	s.notifyState(StateReady)
}

// forceTimeout fires when startup auth has not resolved in time.
func (s *SessionService) forceTimeout() {
	s.mu.Lock()
	stuck := s.state == StateAuthenticating || s.state == StateProfilePending
	s.mu.Unlock()

	if !stuck {
		return
	}
	log.Printf("session init timed out, forcing anonymous")
	s.resetToAnonymous("loading timeout, please try again")
}

func (s *SessionService) resetToAnonymous(errMsg string) {
	s.stopWatchdog()

	s.mu.Lock()
	s.session = nil
	s.profile = nil
	s.loading = false
	s.lastErr = errMsg
	s.state = StateAnonymous
	s.mu.Unlock()

	s.notifyState(StateAnonymous)
}

func (s *SessionService) setState(state SessionState, errMsg string) {
	s.mu.Lock()
	s.state = state
	s.lastErr = errMsg
	s.mu.Unlock()
	s.notifyState(state)
}

func (s *SessionService) stopWatchdog() {
	s.mu.Lock()
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
	s.mu.Unlock()
}

func (s *SessionService) notifyState(state SessionState) {
	s.mu.Lock()
	fns := make([]func(SessionState), len(s.onState))
	copy(fns, s.onState)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
