package qr

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagStringParseRoundtrip(t *testing.T) {
	tag := TagString("Webshop", "845-0000000001-12", decimal.NewFromInt(1000), "RSD")

	tags, err := Parse(tag)
	require.NoError(t, err)
	assert.Equal(t, "845-0000000001-12", tags["R"])
	assert.Equal(t, "Webshop", tags["N"])
	assert.Equal(t, "RSD1000", tags["I"])
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("K:PR|novalue")
	assert.Error(t, err)
}

func TestSimRenderer(t *testing.T) {
	png, err := SimRenderer{}.Render("K:PR|V:01")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4], "renderer output is a PNG")

	_, err = SimRenderer{}.Render("")
	assert.Error(t, err)
}
