// Package qr wraps the IPS QR collaborators the PSP consumes: a tag
// string encoder/parser and an opaque tag→image renderer. The tag
// format itself is owned by the encoder; nothing here interprets it
// beyond pipe-delimited key:value pairs.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Renderer turns a tag string into QR image bytes (PNG).
type Renderer interface {
	Render(tag string) ([]byte, error)
}

// TagString builds the payment tag string for a merchant account and
// amount.
func TagString(merchantName, merchantAccount string, amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("K:PR|V:01|C:1|R:%s|N:%s|I:%s%s|SF:221", merchantAccount, merchantName, currency, amount.String())
}

// Parse splits a tag string back into its tags.
func Parse(tag string) (map[string]string, error) {
	tags := make(map[string]string)
	for _, part := range strings.Split(tag, "|") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("malformed tag %q", part)
		}
		tags[kv[0]] = kv[1]
	}
	return tags, nil
}

// 1x1 transparent PNG; enough for the simulated renderer.
var stubPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// SimRenderer is the stand-in renderer for the simulated deployment.
type SimRenderer struct{}

func (SimRenderer) Render(tag string) ([]byte, error) {
	if tag == "" {
		return nil, fmt.Errorf("empty tag string")
	}
	return stubPNG, nil
}
