package issuer

import "sync"

// StoredCard is a card record as the issuing bank knows it. This is the
// only place in the system where a full PAN is held at rest.
type StoredCard struct {
	PAN            string
	SecurityCode   string
	CardHolderName string
	ExpiryDate     string
	AccountID      string
}

// Vault looks up the bank's own card records by PAN. The caller still
// has to match the remaining card fields; a PAN hit alone proves
// nothing.
type Vault interface {
	Lookup(pan string) (StoredCard, bool)
}

type MemoryVault struct {
	mu    sync.RWMutex
	cards map[string]StoredCard
}

func NewMemoryVault(cards []StoredCard) *MemoryVault {
	byPAN := make(map[string]StoredCard, len(cards))
	for _, c := range cards {
		byPAN[c.PAN] = c
	}
	return &MemoryVault{cards: byPAN}
}

func (v *MemoryVault) Lookup(pan string) (StoredCard, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c, ok := v.cards[pan]
	return c, ok
}
