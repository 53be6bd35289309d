package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/MrEthical07/goToken/internal/codec"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const signingString = "eyJhbGciOiJIUzI1NiJ9.eyJpc3MiOiJBIn0"

func TestHMACSignVerify(t *testing.T) {
	for _, alg := range []Algorithm{HS256, HS384, HS512} {
		sig, err := Sign(alg, signingString, SymmetricKey(testSecret))
		if err != nil {
			t.Fatalf("%s sign: %v", alg, err)
		}
		if sig == "" {
			t.Fatalf("%s: empty signature", alg)
		}
		if err := Verify(alg, signingString, sig, SymmetricKey(testSecret)); err != nil {
			t.Fatalf("%s verify: %v", alg, err)
		}
	}
}

func TestHMACVerifyWrongKey(t *testing.T) {
	sig, err := Sign(HS256, signingString, SymmetricKey(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := []byte("ffffffffffffffffffffffffffffffff")
	if err := Verify(HS256, signingString, sig, SymmetricKey(other)); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestTamperedSigningStringFailsVerify(t *testing.T) {
	sig, err := Sign(HS256, signingString, SymmetricKey(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tampered := signingString[:len(signingString)-1] + "X"
	if err := Verify(HS256, tampered, sig, SymmetricKey(testSecret)); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestRSASignVerify(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	for _, alg := range []Algorithm{RS256, RS384, RS512} {
		sig, err := Sign(alg, signingString, RSAPrivateKey(priv))
		if err != nil {
			t.Fatalf("%s sign: %v", alg, err)
		}
		if err := Verify(alg, signingString, sig, RSAPublicKey(&priv.PublicKey)); err != nil {
			t.Fatalf("%s verify with public key: %v", alg, err)
		}
		// Private key material also serves verification.
		if err := Verify(alg, signingString, sig, RSAPrivateKey(priv)); err != nil {
			t.Fatalf("%s verify with private key: %v", alg, err)
		}
	}
}

func TestECDSASignVerify(t *testing.T) {
	cases := []struct {
		alg   Algorithm
		curve elliptic.Curve
	}{
		{ES256, elliptic.P256()},
		{ES384, elliptic.P384()},
		{ES512, elliptic.P521()},
	}

	for _, c := range cases {
		priv, err := ecdsa.GenerateKey(c.curve, rand.Reader)
		if err != nil {
			t.Fatalf("generate %s key: %v", c.alg, err)
		}
		sig, err := Sign(c.alg, signingString, ECDSAPrivateKey(priv))
		if err != nil {
			t.Fatalf("%s sign: %v", c.alg, err)
		}
		if err := Verify(c.alg, signingString, sig, ECDSAPublicKey(&priv.PublicKey)); err != nil {
			t.Fatalf("%s verify: %v", c.alg, err)
		}
	}
}

func TestNoneAlgorithm(t *testing.T) {
	sig, err := Sign(None, signingString, Key{})
	if err != nil {
		t.Fatalf("none sign: %v", err)
	}
	if sig != "" {
		t.Fatalf("none signature must be empty, got %q", sig)
	}

	if err := Verify(None, signingString, "", SymmetricKey(testSecret)); !errors.Is(err, ErrNoneAlgorithm) {
		t.Fatalf("expected ErrNoneAlgorithm, got %v", err)
	}
}

func TestKeyKindMismatch(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	if _, err := Sign(HS256, signingString, RSAPrivateKey(priv)); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
	if _, err := Sign(RS256, signingString, SymmetricKey(testSecret)); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
	if err := Verify(ES256, signingString, "c2ln", SymmetricKey(testSecret)); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	if _, err := Sign(HS256, signingString, SymmetricKey(nil)); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if err := Verify(HS256, signingString, "c2ln", Key{}); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch for unset key, got %v", err)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if Supported("HS128") {
		t.Fatal("HS128 must not be supported")
	}
	if !Supported(None) {
		t.Fatal("none must be recognized")
	}
	if _, err := Sign("HS128", signingString, SymmetricKey(testSecret)); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestVerifyRejectsEmptyAndMalformedSignature(t *testing.T) {
	if err := Verify(HS256, signingString, "", SymmetricKey(testSecret)); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature for empty segment, got %v", err)
	}
	if err := Verify(HS256, signingString, "!!!", SymmetricKey(testSecret)); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature for malformed segment, got %v", err)
	}
}

func TestSignatureSegmentIsBase64URL(t *testing.T) {
	sig, err := Sign(HS256, signingString, SymmetricKey(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Decode(sig); err != nil {
		t.Fatalf("signature segment not decodable: %v", err)
	}
}
