package sec

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewXChaCha20Poly1305Cipher(testKey)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := c.EncryptEncode([]byte("hunter2"))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := c.DecryptString(enc)
	if err != nil || plain != "hunter2" {
		t.Fatalf("DecryptString = %q, %v", plain, err)
	}

	// flip one byte of the ciphertext
	raw, _ := base64.RawURLEncoding.DecodeString(enc)
	raw[len(raw)-1] ^= 0xff
	if _, err = c.DecodeDecrypt(base64.RawURLEncoding.EncodeToString(raw)); err == nil {
		t.Error("tampered ciphertext accepted")
	}
	if _, err = c.DecodeDecrypt("AAAA"); err == nil {
		t.Error("short ciphertext accepted")
	}
}

func TestCipherKeySize(t *testing.T) {
	if _, err := NewXChaCha20Poly1305Cipher([]byte("short")); err == nil {
		t.Error("short key accepted")
	}
}

func TestConfCipherFromEnv(t *testing.T) {
	t.Setenv(ConfKeyEnv, "")
	if _, err := NewConfCipherFromEnv(); !errors.Is(err, ErrNoConfKey) {
		t.Errorf("error = %v, want ErrNoConfKey", err)
	}

	t.Setenv(ConfKeyEnv, string(testKey))
	if _, err := NewConfCipherFromEnv(); err != nil {
		t.Errorf("raw key: %v", err)
	}

	t.Setenv(ConfKeyEnv, base64.RawURLEncoding.EncodeToString(testKey))
	if _, err := NewConfCipherFromEnv(); err != nil {
		t.Errorf("base64 key: %v", err)
	}
}

func TestHMACToken(t *testing.T) {
	secret := []byte("gateway-secret")
	signed, err := GenerateHMACSignedToken("gw-livedocx", "billing", secret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ParseHMACSignedToken(signed, secret, "gw-livedocx")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims, err := GetClaimsFromParsedJWTToken(tok)
	if err != nil || claims["sub"] != "billing" {
		t.Errorf("claims = %v, %v", claims, err)
	}

	if _, err = ParseHMACSignedToken(signed, []byte("other"), ""); err == nil {
		t.Error("wrong secret accepted")
	}
	if _, err = ParseHMACSignedToken(signed, secret, "someone-else"); err == nil {
		t.Error("wrong issuer accepted")
	}

	expired, _ := GenerateHMACSignedToken("gw-livedocx", "billing", secret, -time.Minute)
	if _, err = ParseHMACSignedToken(expired, secret, ""); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err = ParseHMACSignedToken(unsigned, secret, ""); err == nil {
		t.Error("alg=none accepted")
	}
}

func TestExtractBearerToken(t *testing.T) {
	if got := ExtractBearerToken("Bearer abc.def"); got != "abc.def" {
		t.Errorf("got %q", got)
	}
	for _, h := range []string{"", "Bearer ", "Basic abc", "bearer abc"} {
		if got := ExtractBearerToken(h); got != "" {
			t.Errorf("ExtractBearerToken(%q) = %q", h, got)
		}
	}
}

func TestHashHexSHA256(t *testing.T) {
	got := HashHexSHA256([]byte("abc"))
	if !strings.HasPrefix(got, "ba7816bf") || len(got) != 64 {
		t.Errorf("digest = %s", got)
	}
}
