package validators

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

// BearerToken returns the credential from the Authorization header. A bare
// token without the scheme is accepted.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(raw, " ")
	if !found {
		token = scheme
	} else if !strings.EqualFold(scheme, "bearer") {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "unsupported authorization scheme")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// QueryInt reads an optional bounded integer query parameter.
func QueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").
			WithDetails(map[string]any{key: raw, "min": lo, "max": hi})
	}
	return n, nil
}

// CleanText drops control characters, collapses whitespace runs and cuts the
// result to maxRunes.
func CleanText(input string, maxRunes int) string {
	var b strings.Builder
	space := false
	n := 0
	for _, r := range strings.TrimSpace(input) {
		if maxRunes > 0 && n >= maxRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && n > 0 {
			if maxRunes > 0 && n+1 >= maxRunes {
				break
			}
			b.WriteByte(' ')
			n++
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return b.String()
}
