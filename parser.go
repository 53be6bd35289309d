package goToken

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goToken/internal/codec"
)

// ErrTokenTooLarge guards segment decoding against pathological inputs.
var ErrTokenTooLarge = errors.New("token too large")

const maxTokenLength = 16384

// Parser turns raw three-segment strings into Token models. Parsing is
// purely structural: it never verifies signatures, expiry, or claim
// values. Parsers are safe for concurrent use.
type Parser struct {
	serializer Serializer
	cache      Cache
	metrics    *Metrics
}

// NewParser returns a Parser using the given serializer (nil falls back
// to JSONSerializer).
func NewParser(serializer Serializer) *Parser {
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	return &Parser{serializer: serializer}
}

// UseCache installs a parsed-token cache keyed by the raw string.
func (p *Parser) UseCache(c Cache) *Parser {
	p.cache = c
	return p
}

// UseMetrics installs a metrics sink.
func (p *Parser) UseMetrics(m *Metrics) *Parser {
	p.metrics = m
	return p
}

// Parse splits raw into its three segments and decodes header and
// payload. Structural malformation is the only failure class: a wrong
// segment count returns ErrTokenFormat, invalid base64url wraps
// ErrDecode, and non-object JSON wraps ErrInvalidJSON.
func (p *Parser) Parse(raw string) (*Token, error) {
	if p.cache != nil {
		if v, ok := p.cache.TryGet(raw); ok {
			if tok, ok := v.(*Token); ok {
				p.metrics.Inc(MetricCacheHit)
				return tok, nil
			}
		}
		p.metrics.Inc(MetricCacheMiss)
	}

	tok, err := p.parse(raw)
	if err != nil {
		p.metrics.Inc(MetricParseFailure)
		return nil, err
	}

	p.metrics.Inc(MetricTokenParsed)
	if p.cache != nil {
		p.cache.Put(raw, tok)
	}
	return tok, nil
}

// TryParse swallows all parse failures into a boolean outcome.
func (p *Parser) TryParse(raw string) (*Token, bool) {
	tok, err := p.Parse(raw)
	return tok, err == nil
}

// ParseWithContext parses after honoring a pending cancellation. Parsing
// itself performs no blocking work; the context entry point exists for
// symmetry with stores that do.
func (p *Parser) ParseWithContext(ctx context.Context, raw string) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Parse(raw)
}

func (p *Parser) parse(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrTokenFormat
	}
	if len(raw) > maxTokenLength {
		return nil, ErrTokenTooLarge
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrTokenFormat
	}

	header, err := p.decodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	payload, err := p.decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	// The signature segment stays verbatim; it is only decoded at verify
	// time by the signing engine.
	return newToken(header, payload, parts[2], raw), nil
}

func (p *Parser) decodeSegment(segment string) (map[string]any, error) {
	decoded, err := codec.DecodeString(segment)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := p.serializer.Deserialize(decoded, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: segment is not a JSON object", ErrInvalidJSON)
	}
	return m, nil
}
