package ports

import "github.com/viralforge/tool-feedback-portal/internal/domain"

// PrincipalVerifier validates identity-service tokens.
type PrincipalVerifier interface {
	ParsePrincipal(raw string) (domain.Principal, error)
}

// PrincipalSigner issues tokens; used by the dev CLI and tests only.
type PrincipalSigner interface {
	SignPrincipal(p domain.Principal) (string, error)
}
