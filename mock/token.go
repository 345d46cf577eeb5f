package mock

import "github.com/fwojciec/parley"

// Interface compliance check.
var _ parley.TokenSource = (*TokenSource)(nil)

// TokenSource is a test double for parley.TokenSource.
type TokenSource struct {
	TokenFn func() (string, error)
}

// Token delegates to TokenFn.
func (s *TokenSource) Token() (string, error) {
	return s.TokenFn()
}
