package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/tokenstore"
	"github.com/dmitrijs2005/skillswap/internal/logging"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 15 * time.Second

	// error bodies are only read for their "detail"
	maxErrorBody = 64 << 10
)

// Options overrides HTTPClient dependencies. Zero values select defaults.
type Options struct {
	// Transport is the underlying round tripper; http.DefaultTransport if nil.
	Transport http.RoundTripper
	// Timeout bounds a whole request, including reading the body.
	Timeout time.Duration
	// RateLimit caps outgoing requests per second; <= 0 disables it.
	RateLimit float64
	Logger    logging.Logger
}

// HTTPClient implements Client over the backend's REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	oauth   *oauth2.Config
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the backend at baseURL (which may carry
// a path prefix such as "/api"). store is consulted on every request.
func NewHTTPClient(baseURL string, store tokenstore.Store, opts Options) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is empty")
	}
	if store == nil {
		return nil, errors.New("token store is nil")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("baseURL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &HTTPClient{
		baseURL: parsed,
		http: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				base:    base,
				store:   store,
				limiter: newLimiter(opts.RateLimit),
				log:     log,
			},
		},
		log: log,
	}
	c.oauth = &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.endpoint("auth/login", nil),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return c, nil
}

// Register creates an account. The backend's answer body is not needed.
func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	return c.call(ctx, "Register", http.MethodPost, "auth/register", nil, reg, nil)
}

// Login exchanges credentials for a bearer token using the OAuth2 password
// grant, which posts them form-encoded.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	const op = "Login"

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return "", newAPIError(op, re.Response.StatusCode, re.Body)
		}
		return "", fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%s: empty access token", op)
	}
	return tok.AccessToken, nil
}

// Me fetches the profile of the token's owner.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, "Me", http.MethodGet, "auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListSkills(ctx context.Context, q SkillQuery) ([]models.Skill, error) {
	query := url.Values{}
	setInt(query, "skip", int64(q.Skip))
	setInt(query, "limit", int64(q.Limit))
	setInt(query, "owner_id", q.OwnerID)

	var skills []models.Skill
	if err := c.call(ctx, "ListSkills", http.MethodGet, "skills/", query, nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (c *HTTPClient) MySkills(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := c.call(ctx, "MySkills", http.MethodGet, "skills/my-skills/", nil, nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (c *HTTPClient) GetSkill(ctx context.Context, id int64) (*models.Skill, error) {
	var s models.Skill
	if err := c.call(ctx, "GetSkill", http.MethodGet, skillPath(id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateSkill(ctx context.Context, in models.SkillInput) (*models.Skill, error) {
	if in.Tags == nil {
		in.Tags = models.Tags{}
	}
	var s models.Skill
	if err := c.call(ctx, "CreateSkill", http.MethodPost, "skills/", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateSkill(ctx context.Context, id int64, patch models.SkillPatch) (*models.Skill, error) {
	var s models.Skill
	if err := c.call(ctx, "UpdateSkill", http.MethodPut, skillPath(id), nil, patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteSkill(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteSkill", http.MethodDelete, skillPath(id), nil, nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context, p Page) ([]models.User, error) {
	query := url.Values{}
	setInt(query, "skip", int64(p.Skip))
	setInt(query, "limit", int64(p.Limit))

	var users []models.User
	if err := c.call(ctx, "ListUsers", http.MethodGet, "users/", query, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, "GetUser", http.MethodGet, "users/"+strconv.FormatInt(id, 10), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ping checks GET /health and expects {"status": "healthy"}.
func (c *HTTPClient) Ping(ctx context.Context) error {
	const op = "Ping"
	var body struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, op, http.MethodGet, "health", nil, nil, &body); err != nil {
		return err
	}
	if body.Status != "healthy" {
		return fmt.Errorf("%s: %w: status %q", op, ErrUnavailable, body.Status)
	}
	return nil
}

// call performs one JSON exchange. payload, if non-nil, is sent as the JSON
// body; out, if non-nil, receives the decoded 2xx answer.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(op, resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func skillPath(id int64) string {
	return "skills/" + strconv.FormatInt(id, 10)
}

func setInt(q url.Values, key string, v int64) {
	if v > 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}
