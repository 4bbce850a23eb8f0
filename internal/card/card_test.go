package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

func validCard() types.CardData {
	return types.CardData{
		PAN:            "4111111111111111",
		SecurityCode:   "123",
		CardHolderName: "Petar Petrovic",
		ExpiryDate:     "12/29",
	}
}

func TestValidateAcceptsWellFormedCard(t *testing.T) {
	require.NoError(t, Validate(validCard()))
}

func TestValidateRejectsMalformedFields(t *testing.T) {
	c := validCard()
	c.PAN = "4111-1111"
	assert.ErrorIs(t, Validate(c), ErrInvalidPAN)

	c = validCard()
	c.SecurityCode = "12"
	assert.ErrorIs(t, Validate(c), ErrInvalidSecurity)

	c = validCard()
	c.CardHolderName = "  "
	assert.ErrorIs(t, Validate(c), ErrMissingHolder)

	c = validCard()
	c.ExpiryDate = "2029-12"
	assert.ErrorIs(t, Validate(c), ErrInvalidExpiry)
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	expired, err := Expired("07/26", now)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = Expired("08/26", now)
	require.NoError(t, err)
	assert.False(t, expired, "card is valid through the end of its expiry month")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "411111******1111", Mask("4111111111111111"))
	assert.Equal(t, "****", Mask("1234"))
}
