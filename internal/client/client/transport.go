package client

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/tokenstore"
	"github.com/dmitrijs2005/skillswap/internal/common"
	"github.com/dmitrijs2005/skillswap/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// authTransport applies the rules every backend request shares. It reads
// the token from the store on each request, so a login or logout is seen by
// the very next call.
type authTransport struct {
	base    http.RoundTripper
	store   tokenstore.Store
	limiter *rate.Limiter
	log     logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	out := req.Clone(ctx)

	requestID := uuid.NewString()
	out.Header.Set(common.RequestIDHeaderName, requestID)

	token, err := t.store.Get(ctx)
	if err != nil {
		t.log.Warn(ctx, "token store read failed", "error", err)
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		t.log.Debug(ctx, "request failed", "method", out.Method, "path", out.URL.Path, "request_id", requestID, "error", err)
		return nil, err
	}

	t.log.Debug(ctx, "request completed",
		"method", out.Method,
		"path", out.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode == http.StatusUnauthorized {
		if err := t.store.Delete(ctx); err != nil {
			t.log.Warn(ctx, "failed to purge token after 401", "error", err)
		} else if token != "" {
			t.log.Info(ctx, "persisted token rejected by server, purged")
		}
	}
	return resp, nil
}

// newLimiter returns nil for a non-positive rate, meaning unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
