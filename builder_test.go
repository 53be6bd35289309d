package goToken

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuilderRoundTrip(t *testing.T) {
	now := time.Now()
	raw, err := NewBuilder(nil).
		SetIssuer("auth.example.com").
		SetSubject("alice").
		SetAudience("api").
		SetIssuedAt(now).
		SetExpirationTime(now.Add(time.Hour)).
		SetJTI("id-1").
		AddClaim("email", "alice@example.com").
		AddClaim("level", 7).
		SignHS256([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tok, err := NewParser(nil).Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for name, want := range map[string]string{
		ClaimIssuer:  "auth.example.com",
		ClaimSubject: "alice",
		ClaimAudience: "api",
		ClaimJTI:     "id-1",
		"email":      "alice@example.com",
	} {
		got, err := ClaimValue[string](tok, name)
		if err != nil || got != want {
			t.Fatalf("claim %s = %q, %v; want %q", name, got, err, want)
		}
	}

	exp, err := ClaimValue[int64](tok, ClaimExpiresAt)
	if err != nil || exp != now.Add(time.Hour).Unix() {
		t.Fatalf("exp = %d, %v; want %d", exp, err, now.Add(time.Hour).Unix())
	}
	level, err := ClaimValue[int](tok, "level")
	if err != nil || level != 7 {
		t.Fatalf("level = %d, %v; want 7", level, err)
	}
}

func TestBuilderMultipleAudiences(t *testing.T) {
	raw, err := NewBuilder(nil).
		SetAudience("api", "web").
		SignHS256([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tok, err := NewParser(nil).Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	aud, err := ClaimValue[[]string](tok, ClaimAudience)
	if err != nil || len(aud) != 2 || aud[0] != "api" || aud[1] != "web" {
		t.Fatalf("aud = %v, %v", aud, err)
	}
}

func TestBuilderEmptyClaimNameIsSticky(t *testing.T) {
	b := NewBuilder(nil).AddClaim("", "x").SetSubject("alice")
	if b.Err() == nil {
		t.Fatal("empty claim name not recorded as error")
	}
	if _, err := b.SignHS256([]byte("secret")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Sign after bad claim = %v, want ErrInvalidArgument", err)
	}
}

func TestBuilderSignRequiresKey(t *testing.T) {
	if _, err := NewBuilder(nil).Sign(AlgHS256, Key{}); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Sign without key = %v, want ErrMissingKey", err)
	}
}

func TestBuilderUnsecured(t *testing.T) {
	raw, err := NewBuilder(nil).SetSubject("alice").Unsecured()
	if err != nil {
		t.Fatalf("Unsecured: %v", err)
	}
	if !strings.HasSuffix(raw, ".") {
		t.Fatalf("unsecured token %q must end with a trailing dot", raw)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("unsecured token %q must still have three segments", raw)
	}

	tok, err := NewParser(nil).Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tok.Algorithm() != AlgNone {
		t.Fatalf("alg = %s, want none", tok.Algorithm())
	}
	if tok.Signature() != "" {
		t.Fatalf("signature = %q, want empty", tok.Signature())
	}
}

func TestBuilderLifetimeClaims(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	b := NewBuilder(nil)
	b.now = func() time.Time { return fixed }

	raw, err := b.AddLifetimeClaims(time.Hour).SignHS256([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tok, err := NewParser(nil).Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for name, want := range map[string]int64{
		ClaimIssuedAt:  fixed.Unix(),
		ClaimNotBefore: fixed.Unix(),
		ClaimExpiresAt: fixed.Add(time.Hour).Unix(),
	} {
		got, err := ClaimValue[int64](tok, name)
		if err != nil || got != want {
			t.Fatalf("%s = %d, %v; want %d", name, got, err, want)
		}
	}
}

func TestBuilderGeneratedJTIUnique(t *testing.T) {
	first, err := NewBuilder(nil).WithGeneratedJTI().SignHS256([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	second, err := NewBuilder(nil).WithGeneratedJTI().SignHS256([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parser := NewParser(nil)
	t1, _ := parser.Parse(first)
	t2, _ := parser.Parse(second)
	j1, _ := ClaimValue[string](t1, ClaimJTI)
	j2, _ := ClaimValue[string](t2, ClaimJTI)
	if j1 == "" || j1 == j2 {
		t.Fatalf("generated jtis %q and %q must be distinct and non-empty", j1, j2)
	}
}

func TestBuilderIssuedMetric(t *testing.T) {
	m := NewMetrics()
	if _, err := NewBuilder(nil).UseMetrics(m).SetSubject("alice").SignHS256([]byte("secret")); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if v := m.Value(MetricTokenIssued); v != 1 {
		t.Fatalf("issued = %d, want 1", v)
	}
}

func TestBuilderTokenModel(t *testing.T) {
	tok, err := NewBuilder(nil).
		SetSubject("alice").
		SetKeyID("k1").
		Token(AlgHS256, SymmetricKey([]byte("secret")))
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.Raw() == "" {
		t.Fatal("Token() produced no raw form")
	}
	if kid, _ := tok.TryHeaderClaim(HeaderKeyID); kid != "k1" {
		t.Fatalf("kid = %v, want k1", kid)
	}
	if !strings.HasSuffix(tok.Raw(), "."+tok.Signature()) {
		t.Fatal("signature segment does not match raw form")
	}
}
