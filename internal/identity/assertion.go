package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAssertionTTL bounds how long a forwarded assertion stays valid.
const DefaultAssertionTTL = 60 * time.Second

var ErrInvalidAssertion = errors.New("invalid identity assertion")

// Claims carries the identity inside an HS256 token.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Signer issues X-User-Assertion tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultAssertionTTL
	}
	return &Signer{key: key, ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(id Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: id.Username,
		Role: string(id.Role),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// Verifier checks assertions against the bare identity headers.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(key []byte) *Verifier {
	return &Verifier{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify accepts token only when it is valid, unexpired and names exactly
// the identity in id.
func (v *Verifier) Verify(token string, id Identity) error {
	if token == "" {
		return fmt.Errorf("%w: missing", ErrInvalidAssertion)
	}

	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if !parsed.Valid {
		return ErrInvalidAssertion
	}

	if claims.Subject != id.UserID || claims.Name != id.Username || claims.Role != string(id.Role) {
		return fmt.Errorf("%w: headers disagree", ErrInvalidAssertion)
	}
	return nil
}
