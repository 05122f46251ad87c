// Package trustdomain holds the curated allow-list behind the trust-domain
// override: ultra-common registrable domains that should not alarm users on
// marginal model confidence.
package trustdomain

import (
	"strings"

	"go.uber.org/zap"
)

// List is the allow-list of registrable domain labels plus the public
// suffixes the override applies under.
type List struct {
	domains  map[string]struct{}
	suffixes map[string]struct{}
	logger   *zap.Logger
}

// NewList creates a new trust-domain list
func NewList(domains, suffixes []string, logger *zap.Logger) *List {
	l := &List{
		domains:  make(map[string]struct{}, len(domains)),
		suffixes: make(map[string]struct{}, len(suffixes)),
		logger:   logger,
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			l.domains[d] = struct{}{}
		}
	}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			l.suffixes[s] = struct{}{}
		}
	}

	if len(l.domains) > 0 && logger != nil {
		logger.Info("Initialized trust-domain list",
			zap.Int("domains", len(l.domains)),
			zap.Int("suffixes", len(l.suffixes)))
	}

	return l
}

// IsTrusted reports whether the registrable domain label is allow-listed and
// sits under one of the trusted public suffixes.
func (l *List) IsTrusted(domain, suffix string) bool {
	if domain == "" || suffix == "" {
		return false
	}
	if _, ok := l.domains[strings.ToLower(domain)]; !ok {
		return false
	}
	_, ok := l.suffixes[strings.ToLower(suffix)]
	return ok
}
