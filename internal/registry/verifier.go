package registry

import "context"

// AuditorVerifier decides whether an identity may approve or revoke
// certifications. Deployments plug in whatever external verification
// mechanism they use; the registry only consumes the result. A returned
// error means verification could not be performed and is surfaced as an
// infrastructure failure, never as a rejection.
type AuditorVerifier interface {
	Verify(ctx context.Context, identity string) (bool, error)
}

// SentinelVerifier is the reference AuditorVerifier: it rejects the
// designated sentinel identity and the empty identity, and accepts every
// other caller.
type SentinelVerifier struct {
	sentinel string
}

// NewSentinelVerifier creates a verifier that rejects only the given
// sentinel identity.
func NewSentinelVerifier(sentinel string) *SentinelVerifier {
	return &SentinelVerifier{sentinel: sentinel}
}

// Verify implements AuditorVerifier.
func (v *SentinelVerifier) Verify(_ context.Context, identity string) (bool, error) {
	if identity == "" || identity == v.sentinel {
		return false, nil
	}
	return true, nil
}
