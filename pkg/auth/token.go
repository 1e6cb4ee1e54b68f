package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "parkoor"

	// maxClockSkew tolerates tokens stamped slightly in the future.
	maxClockSkew = 5 * time.Second
)

// signer produces and verifies HS256 tokens. The signing key is derived
// from (secret, salt), so codecs with different salts never accept each
// other's tokens even if they share a secret.
type signer struct {
	key      []byte
	audience string
	maxAge   time.Duration
	now      func() time.Time
}

func newSigner(secret, salt string, maxAge time.Duration) signer {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))

	return signer{
		key:      mac.Sum(nil),
		audience: salt,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (s *signer) registered() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:   issuer,
		Audience: jwt.ClaimStrings{s.audience},
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
}

func (s *signer) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// parse verifies the signature, namespace and age of token and decodes it
// into claims. Age is checked against the issued-at stamp so a max age
// change applies to tokens already in circulation.
func (s *signer) parse(token string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}

	iss, _ := claims.GetIssuer()
	aud, _ := claims.GetAudience()
	iat, _ := claims.GetIssuedAt()

	if iss != issuer || !slices.Contains(aud, s.audience) || iat == nil {
		return ErrTokenInvalid
	}

	age := s.now().Sub(iat.Time)
	if age < -maxClockSkew {
		return ErrTokenInvalid
	}

	if age > s.maxAge {
		return ErrTokenExpired
	}

	return nil
}
