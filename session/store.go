package session

import (
	"context"
	"log/slog"
	"sync"

	"courtside/contract"
	"courtside/domain"
)

// Snapshot is what readers see: the signed-in identity plus the
// cached profile. Profile may be nil even when Session is set, when
// the profile lookup failed or has not finished.
type Snapshot struct {
	Session *domain.Session
	Profile *domain.Profile
	Loading bool
}

// Store caches the authenticated identity and its profile, tracking
// the auth gateway's sign-in/sign-out transitions. It is dependency
// injected; create one per app instance, call Load once, Teardown
// when done.
type Store struct {
	log      *slog.Logger
	auth     contract.AuthGateway
	profiles contract.ProfileStore

	mu          sync.Mutex
	session     *domain.Session
	profile     *domain.Profile
	loading     bool
	torn        bool
	unsubscribe func()
}

func NewStore(log *slog.Logger, auth contract.AuthGateway, profiles contract.ProfileStore) *Store {
	return &Store{
		log:      log,
		auth:     auth,
		profiles: profiles,
		loading:  true,
	}
}

// Load resolves the current session, fetches the matching profile and
// registers for auth state changes. A failed profile fetch is not
// fatal; the identity alone is enough to be considered signed in.
func (s *Store) Load(ctx context.Context) error {
	current, err := s.auth.CurrentSession(ctx)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	var profile *domain.Profile
	if current != nil {
		profile = s.fetchProfile(ctx, *current)
	}

	s.mu.Lock()
	if !s.torn {
		s.session = current
		s.profile = profile
		s.loading = false
	}
	s.mu.Unlock()

	unsubscribe := s.auth.OnAuthStateChange(s.handleAuthChange)

	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// handleAuthChange runs inline on the gateway's emission path, so
// events are processed in emission order with one profile fetch per
// sign-in.
func (s *Store) handleAuthChange(evt contract.AuthStateEvent, session *domain.Session) {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	if evt == contract.AuthSignedOut || session == nil {
		s.session = nil
		s.profile = nil
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	profile := s.fetchProfile(context.Background(), *session)

	s.mu.Lock()
	if !s.torn {
		s.session = session
		s.profile = profile
		s.loading = false
	}
	s.mu.Unlock()
}

// Refresh refetches the profile for the current identity, for callers
// that know an external edit happened.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.torn || s.session == nil {
		s.mu.Unlock()
		return
	}
	current := *s.session
	s.mu.Unlock()

	profile := s.fetchProfile(ctx, current)

	s.mu.Lock()
	if !s.torn && s.session != nil && s.session.UserID == current.UserID {
		s.profile = profile
	}
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Loading: s.loading}
	if s.session != nil {
		copied := *s.session
		snap.Session = &copied
	}
	if s.profile != nil {
		copied := *s.profile
		snap.Profile = &copied
	}
	return snap
}

// Teardown releases the auth subscription. Safe to call repeatedly.
func (s *Store) Teardown() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.torn = true
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) fetchProfile(ctx context.Context, session domain.Session) *domain.Profile {
	profile, err := s.profiles.GetProfile(ctx, session.UserID)
	if err != nil {
		s.log.Warn("profile fetch failed, keeping identity only",
			"user_id", session.UserID, "error", err)
		return nil
	}
	return &profile
}
