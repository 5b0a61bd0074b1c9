package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RateLimitPolicy caps attempts on one credential endpoint within a fixed
// window, counted per client address and per submitted email. A zero limit
// disables that counter.
type RateLimitPolicy struct {
	Name     string
	Window   time.Duration
	PerIP    int
	PerEmail int
}

func (p RateLimitPolicy) active() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerEmail > 0)
}

// AuthRateLimit enforces policy before login or registration handlers run.
// The client address comes from r.RemoteAddr, so mount chi's RealIP first
// when running behind a proxy.
func AuthRateLimit(policy RateLimitPolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			type counter struct {
				scope string
				limit int
			}
			var counters []counter
			if policy.PerIP > 0 {
				counters = append(counters, counter{"ip:" + remoteHost(r), policy.PerIP})
			}
			if policy.PerEmail > 0 {
				email, err := peekEmail(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				if email != "" {
					counters = append(counters, counter{"email:" + email, policy.PerEmail})
				}
			}

			for _, c := range counters {
				scope := policy.Name + ":" + c.scope
				n, err := store.IncrWithTTL(ctx, store.RateLimitKey(scope), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit counter"))
					return
				}
				if n > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.Name,
							"counter":  strings.SplitN(c.scope, ":", 2)[0],
							"attempts": n,
							"limit":    c.limit,
						}), "auth attempt throttled")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// peekEmail reads the email field without consuming the body. The address is
// hashed so raw emails never reach Redis keys.
func peekEmail(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return "", nil
	}
	email := strings.ToLower(strings.TrimSpace(probe.Email))
	if email == "" {
		return "", nil
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:12]), nil
}
