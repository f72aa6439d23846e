package fetch

import "math/rand/v2"

// defaultIdentity is the fixed identity presented when rotation is
// disabled or the pool cannot produce a value.
const defaultIdentity = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// identityPool holds realistic browser identity strings used when
// rotation is enabled.
var identityPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
}

// IdentityProvider supplies the outbound client identity header
// value, either rotating through the pool or returning the fixed
// default.
type IdentityProvider struct {
	rotate bool
	pick   func(n int) int
}

// NewIdentityProvider builds a provider. When rotate is false every
// call returns the fixed default identity.
func NewIdentityProvider(rotate bool) *IdentityProvider {
	return &IdentityProvider{rotate: rotate, pick: rand.IntN}
}

// Identity returns the next identity string. It never returns an
// empty string: any failure to draw from the pool falls back to the
// fixed default.
func (p *IdentityProvider) Identity() string {
	if p == nil || !p.rotate || len(identityPool) == 0 {
		return defaultIdentity
	}
	idx := p.pick(len(identityPool))
	if idx < 0 || idx >= len(identityPool) || identityPool[idx] == "" {
		return defaultIdentity
	}
	return identityPool[idx]
}
