// Package keylet computes the addressable 256-bit keys of ledger entries.
// Each key is a hash over a one-byte namespace and the identifying data,
// so entries of different kinds can never collide.
package keylet

import (
	"crypto/sha256"

	"github.com/takulai/takd/internal/core/addr"
	"github.com/takulai/takd/internal/core/ledger/entry"
)

// Namespace identifiers for keylet generation.
const (
	spaceAccount   byte = 'a'
	spaceAllowance byte = 'w'
	spaceToken     byte = 'c' // token config singleton
	spaceSupply    byte = 'y' // supply singleton
	spaceStake     byte = 'k'
	spaceStaking   byte = 'K' // staking config singleton
	spacePurchase  byte = 'u'
	spaceSale      byte = 'S' // sale state singleton
	spaceReferral  byte = 'R' // referral config singleton
)

// Keylet addresses a location in the ledger state.
// It combines the entry type with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key over the namespace and identifying data.
func indexHash(space byte, data ...[]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{space})
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Account returns the keylet for an account balance entry.
func Account(a addr.Address) Keylet {
	return Keylet{
		Type: entry.TypeAccount,
		Key:  indexHash(spaceAccount, a[:]),
	}
}

// Allowance returns the keylet for the allowance from owner to spender.
func Allowance(owner, spender addr.Address) Keylet {
	return Keylet{
		Type: entry.TypeAllowance,
		Key:  indexHash(spaceAllowance, owner[:], spender[:]),
	}
}

// TokenConfig returns the keylet for the singleton token policy entry.
func TokenConfig() Keylet {
	return Keylet{
		Type: entry.TypeTokenConfig,
		Key:  indexHash(spaceToken),
	}
}

// Supply returns the keylet for the singleton supply entry.
func Supply() Keylet {
	return Keylet{
		Type: entry.TypeSupply,
		Key:  indexHash(spaceSupply),
	}
}

// Stake returns the keylet for an account's stake record.
func Stake(a addr.Address) Keylet {
	return Keylet{
		Type: entry.TypeStake,
		Key:  indexHash(spaceStake, a[:]),
	}
}

// StakingConfig returns the keylet for the singleton staking policy entry.
func StakingConfig() Keylet {
	return Keylet{
		Type: entry.TypeStakingConfig,
		Key:  indexHash(spaceStaking),
	}
}

// Purchase returns the keylet for a buyer's presale purchase record.
func Purchase(a addr.Address) Keylet {
	return Keylet{
		Type: entry.TypePurchase,
		Key:  indexHash(spacePurchase, a[:]),
	}
}

// SaleState returns the keylet for the singleton presale entry.
func SaleState() Keylet {
	return Keylet{
		Type: entry.TypeSaleState,
		Key:  indexHash(spaceSale),
	}
}

// ReferralConfig returns the keylet for the singleton referral policy entry.
func ReferralConfig() Keylet {
	return Keylet{
		Type: entry.TypeReferralConfig,
		Key:  indexHash(spaceReferral),
	}
}
