package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

// Listener is told the new profile and whether a session is held whenever
// the session changes.
type Listener func(user models.Profile, signedIn bool)

// Session owns the bearer token and current profile. It replaces a global
// current-user: components receive the *Session and Subscribe to changes.
type Session struct {
	store Store
	api   *Client
	group singleflight.Group

	mu    sync.RWMutex
	state State

	subMu     sync.Mutex
	nextSub   int
	listeners map[int]Listener
}

// NewSession restores any persisted session from store. Calls made through
// API() carry the session's token.
func NewSession(api *Client, store Store) (*Session, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	if st.Empty() {
		st = State{}
	}
	s := &Session{store: store, state: st, listeners: map[int]Listener{}}
	s.api = api.WithTokens(s)
	return s, nil
}

// API returns the client that authenticates with this session.
func (s *Session) API() *Client {
	return s.api
}

// Token returns the held bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Profile returns the signed-in user, if any.
func (s *Session) Profile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CurrentUser == nil {
		return models.Profile{}, false
	}
	return *s.state.CurrentUser, true
}

// Login authenticates and persists the returned session. Identical
// concurrent calls share one request and its result.
func (s *Session) Login(ctx context.Context, email, password string) (models.Profile, error) {
	key := flightKey("login", email, password)
	return s.submit(key, func() (dto.AuthResponse, error) {
		var resp dto.AuthResponse
		err := s.api.Call(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
		return resp, err
	})
}

// Signup registers, then behaves like Login. Identical concurrent calls
// share one request, so a double submit creates one account.
func (s *Session) Signup(ctx context.Context, req dto.SignupRequest) (models.Profile, error) {
	key := flightKey("signup", req.Name, req.Email, req.Password, req.Role)
	return s.submit(key, func() (dto.AuthResponse, error) {
		var resp dto.AuthResponse
		err := s.api.Call(ctx, http.MethodPost, "/auth/signup", req, &resp)
		return resp, err
	})
}

// submit runs call once per key among concurrent callers. The first
// caller's context governs the shared request.
func (s *Session) submit(key string, call func() (dto.AuthResponse, error)) (models.Profile, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		if resp.Token == "" {
			return nil, errors.New("auth response carried no token")
		}
		user := resp.User
		if err := s.replace(State{Token: resp.Token, CurrentUser: &user}); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return models.Profile{}, err
	}
	return v.(models.Profile), nil
}

// Logout asks the server to revoke the token, then forgets the session
// locally. The server call is best effort; the local session is cleared
// regardless.
func (s *Session) Logout(ctx context.Context) error {
	if s.Token() != "" {
		_ = s.api.Call(ctx, http.MethodPost, "/auth/logout", nil, nil)
	}
	err := s.store.Clear()
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	s.publish()
	return err
}

// Subscribe registers fn for session changes and returns its unsubscribe.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

// replace persists st before exposing it in memory.
func (s *Session) replace(st State) error {
	if err := s.store.Save(st); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Session) publish() {
	user, signedIn := s.Profile()
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn(user, signedIn)
	}
}

// flightKey hashes the submission so credentials are not kept as map keys.
func flightKey(op string, fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}
