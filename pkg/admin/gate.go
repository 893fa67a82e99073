package admin

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned by Gate.Authorize when a privileged verb
// is attempted without a valid token.
var ErrUnauthorized = errors.New("admin: unauthorized")

// privilegedVerbs names the runcmd dotted paths spec §6 requires a
// token for. Unprivileged verbs (e.g. worker.<n>.stats) pass through
// Gate.Authorize unconditionally.
var privilegedVerbs = map[string]bool{
	"stop":  true,
	"drain": true,
}

// Gate decides whether a runcmd dotted path (scope.id.verb) requires a
// bearer token, and validates one when it does. A zero-value Gate
// (empty SigningKey) treats every verb as unprivileged, matching an
// admin-disabled ServerConfig.
type Gate struct {
	SigningKey string
}

// NewGate returns a Gate enforcing tokens signed with signingKey.
// signingKey == "" disables enforcement entirely (admin.enabled=false).
func NewGate(signingKey string) *Gate {
	return &Gate{SigningKey: signingKey}
}

// Authorize checks a dotted runcmd path (e.g. "supervisor.stop" or
// "worker.2.drain") against the privileged-verb set, validating token
// only when the trailing verb requires it.
func (g *Gate) Authorize(dottedPath, token string) error {
	if g.SigningKey == "" {
		return nil
	}
	parts := strings.Split(dottedPath, ".")
	verb := parts[len(parts)-1]
	if !privilegedVerbs[verb] {
		return nil
	}
	_, err := ValidateToken(g.SigningKey, token)
	if err != nil {
		return errors.Join(ErrUnauthorized, err)
	}
	return nil
}
