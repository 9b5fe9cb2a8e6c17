// internal/resolver/resolver.go
//
// Host-name → tenant resolution.
//
// Context
// -------
// Every inbound request carries a Host header.  The resolver classifies
// it as the platform's own application surface (an exact match against
// the configured main-domain set), a reserved label that falls through to
// normal app routing, or a tenant subdomain lookup.  It is a total
// function over strings: an unknown subdomain is still Tenant(sub), and
// "no such tenant" surfaces later at content lookup, never here.
//
// Notes
// -----
//   - The main-domain set is explicit.  A host with no dot (local dev
//     aliases) only matches via a configured entry, never by inference.
//   - Oxford commas, two spaces after periods.
package resolver

import "strings"

// Kind classifies a resolved host.
type Kind int

const (
	// MainApplication is the platform's own surface (dashboard, onboarding).
	MainApplication Kind = iota
	// Tenant is a candidate tenant subdomain; existence is checked later.
	Tenant
	// Ignored labels ("www", "api", empty) route like the main app.
	Ignored
)

func (k Kind) String() string {
	switch k {
	case MainApplication:
		return "main"
	case Tenant:
		return "tenant"
	default:
		return "ignored"
	}
}

// Resolution is the outcome of classifying one host name.  Subdomain is
// set only when Kind == Tenant.
type Resolution struct {
	Kind      Kind
	Subdomain string
}

// Resolver classifies request hosts against a fixed main-domain set.
type Resolver struct {
	mainDomains map[string]struct{}
}

// New builds a Resolver.  Entries are normalised the same way inbound
// hosts are (port stripped, lowercased) so configuration typos in case or
// port never cause a miss.
func New(mainDomains []string) *Resolver {
	set := make(map[string]struct{}, len(mainDomains))
	for _, d := range mainDomains {
		set[normalizeHost(d)] = struct{}{}
	}
	return &Resolver{mainDomains: set}
}

// Resolve classifies one Host header value.  It cannot fail.
func (r *Resolver) Resolve(host string) Resolution {
	h := normalizeHost(host)

	if _, ok := r.mainDomains[h]; ok {
		return Resolution{Kind: MainApplication}
	}

	sub, _, found := strings.Cut(h, ".")
	if !found {
		sub = ""
	}
	switch sub {
	case "", "www", "api":
		return Resolution{Kind: Ignored}
	}
	return Resolution{Kind: Tenant, Subdomain: sub}
}

// normalizeHost strips any :port suffix and lowercases.
func normalizeHost(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return strings.ToLower(h)
}
