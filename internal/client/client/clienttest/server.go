// Package clienttest provides an in-process fake of the SkillSwap backend
// for tests. It implements the subset of the REST API the client uses,
// including owner checks and bearer-token authentication.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/timex"
	"github.com/go-chi/chi/v5"
)

type account struct {
	user     models.User
	password string
}

// Backend is the fake server state.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]int64
	skills   []models.Skill
	nextUser int64
	nextID   int64
	calls    map[string]int

	lastAuthorization string
	lastRequestID     string
	lastContentType   string
	lastLoginForm     map[string]string
}

// NewBackend starts the fake server and stops it when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		accounts: map[string]*account{},
		tokens:   map[string]int64{},
		calls:    map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Post("/auth/register", b.register)
	r.Post("/auth/login", b.login)
	r.Get("/auth/me", b.authed(b.me))

	r.Get("/skills/", b.listSkills)
	r.Post("/skills/", b.authed(b.createSkill))
	r.Get("/skills/my-skills/", b.authed(b.mySkills))
	r.Get("/skills/{id}", b.getSkill)
	r.Put("/skills/{id}", b.authed(b.updateSkill))
	r.Delete("/skills/{id}", b.authed(b.deleteSkill))

	r.Get("/users/", b.listUsers)
	r.Get("/users/{id}", b.getUser)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the fake server.
func (b *Backend) URL() string { return b.Server.URL }

// AddUser registers an account directly and returns it.
func (b *Backend) AddUser(username, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, username+"@example.org", password)
}

// IssueToken returns a valid token for username, as a login would.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[username]
	if !ok {
		panic("clienttest: unknown user " + username)
	}
	return b.issueLocked(acc.user.ID)
}

// RevokeTokens invalidates every issued token.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]int64{}
}

// AddSkill stores a skill owned by ownerID and returns it.
func (b *Backend) AddSkill(ownerID int64, in models.SkillInput) models.Skill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addSkillLocked(ownerID, in)
}

// Skills returns a copy of the stored skills.
func (b *Backend) Skills() []models.Skill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Skill(nil), b.skills...)
}

// Calls reports how many requests hit "METHOD /path".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls reports the number of requests served.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// LastAuthorization is the Authorization header of the latest request.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuthorization
}

// LastRequestID is the X-Request-ID header of the latest request.
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequestID
}

// LastContentType is the Content-Type header of the latest request.
func (b *Backend) LastContentType() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastContentType
}

// LastLoginForm is the decoded form of the latest login request.
func (b *Backend) LastLoginForm() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLoginForm
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.lastAuthorization = r.Header.Get("Authorization")
		b.lastRequestID = r.Header.Get("X-Request-ID")
		b.lastContentType = r.Header.Get("Content-Type")
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) addUserLocked(username, email, password string) models.User {
	b.nextUser++
	u := models.User{ID: b.nextUser, Username: username, Email: email, CreatedAt: timex.Time{Time: time.Now().UTC()}}
	b.accounts[username] = &account{user: u, password: password}
	return u
}

func (b *Backend) addSkillLocked(ownerID int64, in models.SkillInput) models.Skill {
	b.nextID++
	s := models.Skill{
		ID:          b.nextID,
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Tags:        append(models.Tags{}, in.Tags...),
		OwnerID:     ownerID,
		CreatedAt:   timex.Time{Time: time.Now().UTC()},
	}
	b.skills = append(b.skills, s)
	return s
}

func (b *Backend) issueLocked(userID int64) string {
	token := fmt.Sprintf("token-%d-%d", userID, len(b.tokens)+1)
	b.tokens[token] = userID
	return token
}

func (b *Backend) authed(h func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		userID, valid := b.tokens[token]
		b.mu.Unlock()
		if !ok || !valid {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, userID)
	}
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[reg.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	u := b.addUserLocked(reg.Username, reg.Email, reg.Password)
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastLoginForm = form

	acc, ok := b.accounts[form["username"]]
	if !ok || acc.password != form["password"] {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": b.issueLocked(acc.user.ID),
		"token_type":   "bearer",
	})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request, userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == userID {
			writeJSON(w, http.StatusOK, acc.user)
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

func (b *Backend) listSkills(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Skill, 0, len(b.skills))
	for _, s := range b.skills {
		if ownerID == 0 || s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) mySkills(w http.ResponseWriter, r *http.Request, userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Skill, 0)
	for _, s := range b.skills {
		if s.OwnerID == userID {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getSkill(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.skills {
		if s.ID == id {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Skill not found")
}

func (b *Backend) createSkill(w http.ResponseWriter, r *http.Request, userID int64) {
	var in models.SkillInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid skill")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.addSkillLocked(userID, in))
}

func (b *Backend) updateSkill(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var patch models.SkillPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid patch")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.skills {
		s := &b.skills[i]
		if s.ID != id {
			continue
		}
		if s.OwnerID != userID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		if patch.Title != nil {
			s.Title = *patch.Title
		}
		if patch.Description != nil {
			s.Description = *patch.Description
		}
		if patch.Difficulty != nil {
			s.Difficulty = *patch.Difficulty
		}
		if patch.Tags != nil {
			s.Tags = append(models.Tags{}, (*patch.Tags)...)
		}
		s.UpdatedAt = timex.Time{Time: time.Now().UTC()}
		writeJSON(w, http.StatusOK, *s)
		return
	}
	writeDetail(w, http.StatusNotFound, "Skill not found or you don't have permission to update it")
}

func (b *Backend) deleteSkill(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.skills {
		if s.ID != id {
			continue
		}
		if s.OwnerID != userID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		b.skills = append(b.skills[:i], b.skills[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Skill deleted successfully"})
		return
	}
	writeDetail(w, http.StatusNotFound, "Skill not found or you don't have permission to delete it")
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.User, 0, len(b.accounts))
	for id := int64(1); id <= b.nextUser; id++ {
		for _, acc := range b.accounts {
			if acc.user.ID == id {
				out = append(out, acc.user)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			writeJSON(w, http.StatusOK, acc.user)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "User not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
