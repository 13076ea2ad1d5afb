// Package instrument parses NFO instrument identifiers into structured
// records. Identifiers look like BANKNIFTY27JAN2660000CE (option) or
// BANKNIFTY27JAN26FUT (future): underlying root, expiry day+month, 2-digit
// year, then strike+CE/PE for options or FUT for futures.
package instrument

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// OptionType is the CE/PE suffix of an option identifier.
type OptionType string

const (
	Call OptionType = "CE"
	Put  OptionType = "PE"
)

var (
	// ErrUnknownShape means the identifier matches neither the option nor
	// the future pattern.
	ErrUnknownShape = errors.New("instrument: unrecognized identifier shape")

	optionRe = regexp.MustCompile(`^(.*?)(\d{2})(\d+)(CE|PE)$`)
	futureRe = regexp.MustCompile(`^(.*?)(\d{2})FUT$`)
)

// Instrument is the structured form of an identifier. Parsed once per tick so
// downstream lookups (lot size, future price, moneyness) work on fields
// instead of repeated substring scans.
type Instrument struct {
	Symbol     string
	Underlying string
	ExpiryYear string
	Strike     int64
	OptionType OptionType
	IsFuture   bool
}

// Parser resolves underlyings against a fixed name list. Names are matched
// longest-first so overlapping roots (e.g. NIFTY inside BANKNIFTY) resolve
// deterministically.
type Parser struct {
	underlyings []string
}

// NewParser creates a parser for the given underlying names.
func NewParser(underlyings []string) *Parser {
	names := make([]string, len(underlyings))
	copy(names, underlyings)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return &Parser{underlyings: names}
}

// Parse splits symbol into its structured parts. The underlying is resolved
// from the configured name list; an empty Underlying with a nil error means
// the symbol parsed but its root is not a configured underlying.
func (p *Parser) Parse(symbol string) (Instrument, error) {
	if m := futureRe.FindStringSubmatch(symbol); m != nil {
		return Instrument{
			Symbol:     symbol,
			Underlying: p.resolveUnderlying(symbol),
			ExpiryYear: m[2],
			IsFuture:   true,
		}, nil
	}

	m := optionRe.FindStringSubmatch(symbol)
	if m == nil {
		return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownShape, symbol)
	}
	strike, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownShape, symbol)
	}
	return Instrument{
		Symbol:     symbol,
		Underlying: p.resolveUnderlying(symbol),
		ExpiryYear: m[2],
		Strike:     strike,
		OptionType: OptionType(m[4]),
	}, nil
}

func (p *Parser) resolveUnderlying(symbol string) string {
	for _, name := range p.underlyings {
		if strings.Contains(symbol, name) {
			return name
		}
	}
	return ""
}

// IsFutureSymbol reports whether symbol has the future-contract suffix
// without a full parse.
func IsFutureSymbol(symbol string) bool {
	return strings.HasSuffix(symbol, "FUT")
}
