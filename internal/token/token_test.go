package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNew_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := New(nil, time.Hour)
	if !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, err := New([]byte("super-secret"), time.Hour)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	tok, err := svc.Sign("7", "a@b.com")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "7" {
		t.Fatalf("UserID mismatch: got %q want %q", claims.UserID, "7")
	}
	if claims.Email != "a@b.com" {
		t.Fatalf("Email mismatch: got %q want %q", claims.Email, "a@b.com")
	}
	if claims.IssuedAt == nil || claims.NotBefore == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat/nbf/exp to be set, got %+v", claims.RegisteredClaims)
	}
	if got, want := claims.ExpiresAt.Time, claims.IssuedAt.Time.Add(time.Hour); !got.Equal(want) {
		t.Fatalf("exp mismatch: got %v want %v", got, want)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	s1, _ := New([]byte("right-secret"), time.Hour)
	s2, _ := New([]byte("wrong-secret"), time.Hour)

	tok, err := s1.Sign("42", "")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if _, err := s2.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc, _ := New([]byte("k"), time.Hour)
	if _, err := svc.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

// signAt выпускает токен с произвольными iat/exp тем же секретом — чтобы
// проверять границы срока действия без time.Sleep.
func signAt(t *testing.T, secret []byte, userID string, iat, exp time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			NotBefore: jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	svc, _ := New(secret, time.Hour)

	tok := signAt(t, secret, "u1", time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_ExpirationBoundary(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	svc, _ := New(secret, time.Hour)

	// Невалиден начиная с exp: токен с exp на секунду в прошлом отклоняется,
	// с exp в будущем — принимается.
	past := signAt(t, secret, "u1", time.Now().Add(-time.Hour), time.Now().Add(-time.Second))
	if _, err := svc.Verify(past); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token past exp must be invalid, got %v", err)
	}
	future := signAt(t, secret, "u1", time.Now(), time.Now().Add(time.Minute))
	if _, err := svc.Verify(future); err != nil {
		t.Fatalf("token before exp must be valid, got %v", err)
	}
}

func TestVerify_NotYetValid(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	svc, _ := New(secret, time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
		UserID: "u1",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for not-yet-valid token, got %v", err)
	}
}

func TestVerify_NoneAlgorithmRejected(t *testing.T) {
	t.Parallel()

	svc, _ := New([]byte("secret"), time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u1",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Verify(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestVerify_ForeignAlgorithmRejected(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	svc, _ := New(secret, time.Hour)

	// Токен подписан тем же секретом, но HS384 — allow-list пропускает только HS256.
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u1",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign hs384: %v", err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS384 token, got %v", err)
	}
}

func TestSignVerify_ShortLifetimeExpires(t *testing.T) {
	t.Parallel()

	svc, err := New([]byte("secret"), time.Second)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	tok, err := svc.Sign("42", "")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if _, err := svc.Verify(tok); err != nil {
		t.Fatalf("fresh token must verify: %v", err)
	}

	time.Sleep(2 * time.Second)
	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after lifetime elapsed, got %v", err)
	}
}
