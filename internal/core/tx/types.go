package tx

// Type identifies a transaction type.
type Type int

const (
	TypeUnknown Type = iota

	// Token ledger
	TypeTransfer
	TypeApprove
	TypeTransferFrom
	TypeSetFeePercent
	TypeSetBurnRate
	TypeSetOwner

	// Staking
	TypeStake
	TypeUnstake
	TypeClaimReward

	// Presale
	TypeSetEthPrice
	TypeBuyWithEth
	TypeFinalizeSale
	TypeClaimTokens
	TypeWithdrawRaised

	// Referral
	TypeSetReferralLevels
	TypePayReferralRewards
)

var typeNames = map[Type]string{
	TypeTransfer:           "Transfer",
	TypeApprove:            "Approve",
	TypeTransferFrom:       "TransferFrom",
	TypeSetFeePercent:      "SetFeePercent",
	TypeSetBurnRate:        "SetBurnRate",
	TypeSetOwner:           "SetOwner",
	TypeStake:              "Stake",
	TypeUnstake:            "Unstake",
	TypeClaimReward:        "ClaimReward",
	TypeSetEthPrice:        "SetEthPrice",
	TypeBuyWithEth:         "BuyWithETH",
	TypeFinalizeSale:       "FinalizeSale",
	TypeClaimTokens:        "ClaimTokens",
	TypeWithdrawRaised:     "WithdrawRaised",
	TypeSetReferralLevels:  "SetReferralLevels",
	TypePayReferralRewards: "PayReferralRewards",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the transaction type name used on the wire.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TypeFromName resolves a wire name to a transaction type.
func TypeFromName(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}
