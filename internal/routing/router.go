package routing

import (
	"errors"
	"fmt"
)

const binLength = 4

var ErrUnknownBIN = errors.New("no issuer bank configured for card BIN")

// Mode controls what Resolve does with a BIN that has no table entry.
type Mode string

const (
	// ModeReject fails closed on an unknown BIN.
	ModeReject Mode = "reject"
	// ModeFallback routes unknown BINs to the first configured bank.
	// Kept only for compatibility with legacy fixtures; a card with an
	// unrecognized BIN is silently sent to a bank that did not issue it.
	ModeFallback Mode = "fallback"
)

type Bank struct {
	BIN  string
	Name string
	URL  string
}

// Router maps a PAN prefix (BIN, first four digits) to the URL of the
// issuing bank. The table is static configuration; it is never reloaded
// at runtime, so Resolve is safe for concurrent use without locking.
type Router struct {
	mode  Mode
	banks []Bank
	byBIN map[string]Bank
}

func New(mode Mode, banks []Bank) (*Router, error) {
	if mode != ModeReject && mode != ModeFallback {
		return nil, fmt.Errorf("unknown routing mode %q", mode)
	}
	if mode == ModeFallback && len(banks) == 0 {
		return nil, errors.New("fallback mode requires at least one bank")
	}
	byBIN := make(map[string]Bank, len(banks))
	for _, b := range banks {
		if len(b.BIN) != binLength {
			return nil, fmt.Errorf("bank %q: BIN must be %d digits, got %q", b.Name, binLength, b.BIN)
		}
		if b.URL == "" {
			return nil, fmt.Errorf("bank %q: missing URL", b.Name)
		}
		if _, dup := byBIN[b.BIN]; dup {
			return nil, fmt.Errorf("duplicate BIN %q", b.BIN)
		}
		byBIN[b.BIN] = b
	}
	return &Router{mode: mode, banks: banks, byBIN: byBIN}, nil
}

// Resolve returns the issuer bank URL for the card's BIN. In reject
// mode an unknown or too-short PAN yields ErrUnknownBIN; in fallback
// mode it yields the first configured bank.
func (r *Router) Resolve(pan string) (string, error) {
	if len(pan) >= binLength {
		if bank, ok := r.byBIN[pan[:binLength]]; ok {
			return bank.URL, nil
		}
	}
	if r.mode == ModeFallback {
		return r.banks[0].URL, nil
	}
	return "", ErrUnknownBIN
}
