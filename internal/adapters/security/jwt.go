package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

// portalClaims is the token shape minted by the identity service.
type portalClaims struct {
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	SessionID   string `json:"session_id"`
	jwt.RegisteredClaims
}

// JWTVerifier validates RS256 principal tokens against one public key.
type JWTVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
	leeway    time.Duration
}

// NewJWTVerifier builds a verifier from a PEM public key. An empty issuer
// skips the issuer check.
func NewJWTVerifier(publicKeyPEM, issuer string) (*JWTVerifier, error) {
	if strings.TrimSpace(publicKeyPEM) == "" {
		return nil, errors.New("jwt public key is required")
	}
	pub, err := parseRSAPublic(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &JWTVerifier{publicKey: pub, issuer: issuer, leeway: 30 * time.Second}, nil
}

func (v *JWTVerifier) ParsePrincipal(raw string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &portalClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.publicKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrTokenExpired
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*portalClaims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	if claims.Subject == "" && claims.Email == "" {
		return domain.Principal{}, fmt.Errorf("%w: token carries no identity", domain.ErrUnauthorized)
	}
	principal := domain.Principal{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Superuser: claims.IsSuperuser,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return principal, nil
}

// JWTSigner mints principal tokens. Production tokens come from the
// identity service; this is for the dev CLI and tests.
type JWTSigner struct {
	kid        string
	issuer     string
	ttl        time.Duration
	privateKey *rsa.PrivateKey
}

// NewJWTSigner builds a signer from a PEM private key.
func NewJWTSigner(kid, privateKeyPEM, issuer string, ttl time.Duration) (*JWTSigner, error) {
	priv, err := parseRSAPrivate(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return newSigner(kid, issuer, ttl, priv), nil
}

// NewEphemeralJWTSigner creates an in-memory keypair for local/dev use.
func NewEphemeralJWTSigner(kid, issuer string, ttl time.Duration) (*JWTSigner, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return newSigner(kid, issuer, ttl, privateKey), nil
}

func newSigner(kid, issuer string, ttl time.Duration, key *rsa.PrivateKey) *JWTSigner {
	if kid == "" {
		kid = "ephemeral-key-1"
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTSigner{kid: kid, issuer: issuer, ttl: ttl, privateKey: key}
}

func (s *JWTSigner) SignPrincipal(p domain.Principal) (string, error) {
	now := time.Now().UTC()
	expiresAt := p.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.ttl)
	}
	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, portalClaims{
		Email:       p.Email,
		IsSuperuser: p.Superuser,
		SessionID:   sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	token.Header["kid"] = s.kid
	return token.SignedString(s.privateKey)
}

// Verifier returns a verifier bound to the signer's public key.
func (s *JWTSigner) Verifier() *JWTVerifier {
	return &JWTVerifier{publicKey: &s.privateKey.PublicKey, issuer: s.issuer, leeway: 30 * time.Second}
}

// PublicKeyPEM encodes the signer's public key for distribution.
func (s *JWTSigner) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&s.privateKey.PublicKey)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func parseRSAPrivate(raw string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid private PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
