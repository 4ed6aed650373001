package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/tokenstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.org"}

func unauthorized(detail string) error {
	return &client.APIError{Op: "Me", Status: http.StatusUnauthorized, Detail: detail}
}

func storedToken(t *testing.T, s tokenstore.Store) string {
	t.Helper()
	v, err := s.Get(context.Background())
	require.NoError(t, err)
	return v
}

func TestSessionManager_InitialState(t *testing.T) {
	m := NewSessionManager(&fakeClient{}, tokenstore.NewMemory(""), nil)

	assert.Equal(t, StateBootstrapping, m.State())
	snap := m.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.IsAuthenticated())
}

func TestBootstrap_NoToken_NoNetwork(t *testing.T) {
	fc := &fakeClient{}
	m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	snap := m.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.IsAuthenticated())
	assert.Equal(t, 0, fc.TotalCalls())
}

func TestBootstrap_ValidToken(t *testing.T) {
	fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) { return alice, nil }}
	store := tokenstore.NewMemory("abc")
	m := NewSessionManager(fc, store, nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	snap := m.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, alice, snap.CurrentUser)
	assert.Equal(t, "abc", storedToken(t, store))
	assert.Equal(t, 1, fc.Calls("Me"))
}

func TestBootstrap_RejectedToken_IsRemovedSilently(t *testing.T) {
	fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) {
		return nil, unauthorized("Could not validate credentials")
	}}
	store := tokenstore.NewMemory("stale")
	m := NewSessionManager(fc, store, nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
	assert.Empty(t, storedToken(t, store))
}

func TestBootstrap_NetworkFailure_DropsToken(t *testing.T) {
	fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) {
		return nil, client.ErrUnavailable
	}}
	store := tokenstore.NewMemory("abc")
	m := NewSessionManager(fc, store, nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, storedToken(t, store))
}

func TestBootstrap_StoreReadFailure_TreatedAsNoToken(t *testing.T) {
	fc := &fakeClient{}
	m := NewSessionManager(fc, failingStore{err: errors.New("disk gone")}, nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, 0, fc.TotalCalls())
}

func TestLogin_Success(t *testing.T) {
	var gotCreds models.Credentials
	fc := &fakeClient{
		LoginFn: func(_ context.Context, c models.Credentials) (string, error) {
			gotCreds = c
			return "tok-1", nil
		},
		MeFn: func(context.Context) (*models.User, error) { return alice, nil },
	}
	store := tokenstore.NewMemory("")
	m := NewSessionManager(fc, store, nil)
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), models.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, models.Credentials{Username: "alice", Password: "secret"}, gotCreds)
	assert.Equal(t, StateAuthenticated, m.State())
	snap := m.Snapshot()
	assert.Equal(t, alice, snap.CurrentUser)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, "tok-1", storedToken(t, store))
}

func TestLogin_BadCredentials(t *testing.T) {
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) {
			return "", &client.APIError{Op: "Login", Status: http.StatusUnauthorized, Detail: "Incorrect username or password"}
		},
	}
	store := tokenstore.NewMemory("")
	m := NewSessionManager(fc, store, nil)
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), models.Credentials{Username: "alice", Password: "nope"})
	require.Error(t, err)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.False(t, snap.Loading)
	assert.Equal(t, "Incorrect username or password", snap.LastError)
	assert.Empty(t, storedToken(t, store))
	assert.Equal(t, 0, fc.Calls("Me"))
}

func TestLogin_NoDetail_UsesFallback(t *testing.T) {
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) {
			return "", client.ErrUnavailable
		},
	}
	m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

	require.Error(t, m.Login(context.Background(), models.Credentials{Username: "a", Password: "b"}))
	assert.Equal(t, "Login failed", m.Snapshot().LastError)
}

func TestLogin_ProfileFailure_RemovesNewToken(t *testing.T) {
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) { return "tok-1", nil },
		MeFn: func(context.Context) (*models.User, error) {
			return nil, &client.APIError{Op: "Me", Status: http.StatusInternalServerError}
		},
	}
	store := tokenstore.NewMemory("")
	m := NewSessionManager(fc, store, nil)

	err := m.Login(context.Background(), models.Credentials{Username: "alice", Password: "secret"})
	require.ErrorIs(t, err, client.ErrUnavailable)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, "Login failed", m.Snapshot().LastError)
	assert.Empty(t, storedToken(t, store))
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) { return alice, nil },
		LoginFn: func(context.Context, models.Credentials) (string, error) {
			return "", client.ErrUnavailable
		},
	}
	store := tokenstore.NewMemory("old")
	m := NewSessionManager(fc, store, nil)
	m.Bootstrap(context.Background())
	require.Equal(t, StateAuthenticated, m.State())

	require.Error(t, m.Login(context.Background(), models.Credentials{Username: "bob", Password: "x"}))

	assert.Equal(t, StateAuthenticated, m.State())
	snap := m.Snapshot()
	assert.Equal(t, alice, snap.CurrentUser)
	assert.False(t, snap.Loading)
	assert.Equal(t, "Login failed", snap.LastError)
	assert.Equal(t, "old", storedToken(t, store))
}

func TestLogin_UnauthorizedEndsExistingSession(t *testing.T) {
	store := tokenstore.NewMemory("old")
	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) { return alice, nil },
		LoginFn: func(ctx context.Context, _ models.Credentials) (string, error) {
			// the transport purges the token on any 401
			require.NoError(t, store.Delete(ctx))
			return "", &client.APIError{Op: "Login", Status: http.StatusUnauthorized, Detail: "Incorrect username or password"}
		},
	}
	m := NewSessionManager(fc, store, nil)
	m.Bootstrap(context.Background())

	require.Error(t, m.Login(context.Background(), models.Credentials{Username: "bob", Password: "x"}))

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.False(t, m.Snapshot().IsAuthenticated())
	assert.Equal(t, "Incorrect username or password", m.Snapshot().LastError)
}

func TestLogin_StoreFailure(t *testing.T) {
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) { return "tok-1", nil },
	}
	m := NewSessionManager(fc, failingStore{err: errors.New("read-only")}, nil)

	err := m.Login(context.Background(), models.Credentials{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.False(t, m.Snapshot().Loading)
	assert.False(t, m.Snapshot().IsAuthenticated())
	assert.Equal(t, 0, fc.Calls("Me"))
}

func TestLogin_LoadingDuringCall(t *testing.T) {
	var m *SessionManager
	var during Session
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) {
			during = m.Snapshot()
			return "tok", nil
		},
		MeFn: func(context.Context) (*models.User, error) { return alice, nil },
	}
	m = NewSessionManager(fc, tokenstore.NewMemory(""), nil)
	m.Bootstrap(context.Background())

	require.NoError(t, m.Login(context.Background(), models.Credentials{Username: "alice", Password: "x"}))
	assert.True(t, during.Loading)
	assert.False(t, m.Snapshot().Loading)
}

func TestLogin_ClearsPreviousError(t *testing.T) {
	fail := true
	fc := &fakeClient{
		LoginFn: func(context.Context, models.Credentials) (string, error) {
			if fail {
				return "", &client.APIError{Op: "Login", Status: 401, Detail: "Incorrect username or password"}
			}
			return "tok", nil
		},
		MeFn: func(context.Context) (*models.User, error) { return alice, nil },
	}
	m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

	require.Error(t, m.Login(context.Background(), models.Credentials{Username: "alice", Password: "bad"}))
	require.NotEmpty(t, m.Snapshot().LastError)

	fail = false
	require.NoError(t, m.Login(context.Background(), models.Credentials{Username: "alice", Password: "good"}))
	assert.Empty(t, m.Snapshot().LastError)
}

func TestRegister(t *testing.T) {
	reg := models.Registration{Username: "bob", Email: "bob@example.org", Password: "pw"}

	t.Run("success keeps state", func(t *testing.T) {
		fc := &fakeClient{}
		m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)
		m.Bootstrap(context.Background())

		require.NoError(t, m.Register(context.Background(), reg))
		assert.Equal(t, StateUnauthenticated, m.State())
		assert.False(t, m.Snapshot().Loading)
		assert.Equal(t, 1, fc.Calls("Register"))
	})

	t.Run("server detail", func(t *testing.T) {
		fc := &fakeClient{RegisterFn: func(context.Context, models.Registration) error {
			return &client.APIError{Op: "Register", Status: 400, Detail: "Username already registered"}
		}}
		m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

		require.Error(t, m.Register(context.Background(), reg))
		assert.Equal(t, "Username already registered", m.Snapshot().LastError)
		assert.False(t, m.Snapshot().Loading)
	})

	t.Run("fallback", func(t *testing.T) {
		fc := &fakeClient{RegisterFn: func(context.Context, models.Registration) error {
			return client.ErrUnavailable
		}}
		m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

		require.Error(t, m.Register(context.Background(), reg))
		assert.Equal(t, "Registration failed", m.Snapshot().LastError)
	})

	t.Run("invalid input makes no request", func(t *testing.T) {
		fc := &fakeClient{}
		m := NewSessionManager(fc, tokenstore.NewMemory(""), nil)

		err := m.Register(context.Background(), models.Registration{Username: "bob"})
		require.ErrorIs(t, err, models.ErrInvalidInput)
		assert.NotEmpty(t, m.Snapshot().LastError)
		assert.Equal(t, 0, fc.TotalCalls())
	})

	t.Run("authenticated session is untouched", func(t *testing.T) {
		fc := &fakeClient{
			MeFn: func(context.Context) (*models.User, error) { return alice, nil },
			RegisterFn: func(context.Context, models.Registration) error {
				return client.ErrUnavailable
			},
		}
		m := NewSessionManager(fc, tokenstore.NewMemory("abc"), nil)
		m.Bootstrap(context.Background())

		require.Error(t, m.Register(context.Background(), reg))
		assert.Equal(t, StateAuthenticated, m.State())
		assert.Equal(t, alice, m.Snapshot().CurrentUser)
	})
}

func TestLogout_FromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		token string
		setup func(m *SessionManager)
	}{
		{"authenticated", "abc", func(m *SessionManager) { m.Bootstrap(context.Background()) }},
		{"unauthenticated", "", func(m *SessionManager) { m.Bootstrap(context.Background()) }},
		{"bootstrapping", "abc", func(m *SessionManager) {}},
		{"with error", "", func(m *SessionManager) {
			_ = m.Register(context.Background(), models.Registration{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) { return alice, nil }}
			store := tokenstore.NewMemory(tt.token)
			m := NewSessionManager(fc, store, nil)
			tt.setup(m)
			calls := fc.TotalCalls()

			require.NoError(t, m.Logout(context.Background()))
			require.NoError(t, m.Logout(context.Background()))

			snap := m.Snapshot()
			assert.Nil(t, snap.CurrentUser)
			assert.Empty(t, snap.LastError)
			assert.Empty(t, storedToken(t, store))
			assert.Equal(t, StateUnauthenticated, m.State())
			assert.Equal(t, calls, fc.TotalCalls())
		})
	}
}

func TestLogout_StoreFailureStillClearsSession(t *testing.T) {
	m := NewSessionManager(&fakeClient{}, failingStore{err: errors.New("locked")}, nil)

	require.Error(t, m.Logout(context.Background()))
	assert.False(t, m.Snapshot().IsAuthenticated())
	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestClearError(t *testing.T) {
	m := NewSessionManager(&fakeClient{}, tokenstore.NewMemory(""), nil)
	_ = m.Register(context.Background(), models.Registration{})
	require.NotEmpty(t, m.Snapshot().LastError)

	m.ClearError()
	assert.Empty(t, m.Snapshot().LastError)
}

func TestRevalidate(t *testing.T) {
	t.Run("replaces user", func(t *testing.T) {
		renamed := &models.User{ID: 1, Username: "alice2"}
		user := alice
		fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) { return user, nil }}
		m := NewSessionManager(fc, tokenstore.NewMemory("abc"), nil)
		m.Bootstrap(context.Background())

		user = renamed
		assert.True(t, m.Revalidate(context.Background()))
		assert.Equal(t, renamed, m.Snapshot().CurrentUser)
	})

	t.Run("token purged elsewhere", func(t *testing.T) {
		fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) { return alice, nil }}
		store := tokenstore.NewMemory("abc")
		m := NewSessionManager(fc, store, nil)
		m.Bootstrap(context.Background())
		require.NoError(t, store.Delete(context.Background()))

		calls := fc.TotalCalls()
		assert.False(t, m.Revalidate(context.Background()))
		assert.Equal(t, StateUnauthenticated, m.State())
		assert.Equal(t, calls, fc.TotalCalls())
	})

	t.Run("rejected keeps error and loading", func(t *testing.T) {
		ok := true
		fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) {
			if ok {
				return alice, nil
			}
			return nil, unauthorized("")
		}}
		store := tokenstore.NewMemory("abc")
		m := NewSessionManager(fc, store, nil)
		m.Bootstrap(context.Background())
		_ = m.Register(context.Background(), models.Registration{})
		before := m.Snapshot().LastError

		ok = false
		assert.False(t, m.Revalidate(context.Background()))

		snap := m.Snapshot()
		assert.Nil(t, snap.CurrentUser)
		assert.Equal(t, before, snap.LastError)
		assert.False(t, snap.Loading)
		assert.Empty(t, storedToken(t, store))
	})
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	m := NewSessionManager(&fakeClient{}, tokenstore.NewMemory(signedToken(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()})), nil)
	got, ok, err := m.TokenExpiry(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	m = NewSessionManager(&fakeClient{}, tokenstore.NewMemory("opaque-token"), nil)
	_, ok, err = m.TokenExpiry(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	m = NewSessionManager(&fakeClient{}, tokenstore.NewMemory(signedToken(t, jwt.MapClaims{"sub": "alice"})), nil)
	_, ok, err = m.TokenExpiry(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	m = NewSessionManager(&fakeClient{}, tokenstore.NewMemory(""), nil)
	_, ok, err = m.TokenExpiry(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	m = NewSessionManager(&fakeClient{}, failingStore{err: errors.New("x")}, nil)
	_, _, err = m.TokenExpiry(context.Background())
	require.Error(t, err)
}

func TestBootstrap_ExpiredJWT_StillAsksServer(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	fc := &fakeClient{MeFn: func(context.Context) (*models.User, error) { return alice, nil }}
	m := NewSessionManager(fc, tokenstore.NewMemory(token), nil)

	m.Bootstrap(context.Background())

	assert.Equal(t, 1, fc.Calls("Me"))
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "bootstrapping", StateBootstrapping.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(unauthorized("x")))
	assert.False(t, IsUnauthorized(client.ErrUnavailable))
	assert.False(t, IsUnauthorized(nil))
}
