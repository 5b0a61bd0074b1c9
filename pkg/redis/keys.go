package redis

import "strings"

// Namespace prefixes every key this service writes.
const Namespace = "cl"

func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(Namespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

// IdempotencyKey holds a stored response for one client key within scope.
func (c *Client) IdempotencyKey(scope, id string) string { return key("idempotency", scope, id) }

// RateLimitKey holds a fixed-window attempt counter.
func (c *Client) RateLimitKey(scope string) string { return key("rate_limit", scope) }

// AccessSessionKey holds the refresh session for an access token jti.
func (c *Client) AccessSessionKey(accessID string) string { return key("session", "access", accessID) }

// CartKey holds a user's cart snapshot.
func (c *Client) CartKey(userID string) string { return key("cart", userID) }

// VoteLockKey is the short-lived per (user, jelly) vote lock.
func (c *Client) VoteLockKey(userID, jellyID string) string {
	return key("lock", "vote", userID, jellyID)
}
