package tx

import (
	"encoding/json"
	"fmt"
)

// NewFromType returns a fresh transaction of the given type.
func NewFromType(t Type) (Transaction, error) {
	switch t {
	case TypeTransfer:
		return &Transfer{}, nil
	case TypeApprove:
		return &Approve{}, nil
	case TypeTransferFrom:
		return &TransferFrom{}, nil
	case TypeSetFeePercent:
		return &SetFeePercent{}, nil
	case TypeSetBurnRate:
		return &SetBurnRate{}, nil
	case TypeSetOwner:
		return &SetOwner{}, nil
	case TypeStake:
		return &Stake{}, nil
	case TypeUnstake:
		return &Unstake{}, nil
	case TypeClaimReward:
		return &ClaimReward{}, nil
	case TypeSetEthPrice:
		return &SetEthPrice{}, nil
	case TypeBuyWithEth:
		return &BuyWithETH{}, nil
	case TypeFinalizeSale:
		return &FinalizeSale{}, nil
	case TypeClaimTokens:
		return &ClaimTokens{}, nil
	case TypeWithdrawRaised:
		return &WithdrawRaised{}, nil
	case TypeSetReferralLevels:
		return &SetReferralLevels{}, nil
	case TypePayReferralRewards:
		return &PayReferralRewards{}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %d", t)
	}
}

// FromJSON decodes a transaction from its JSON form, dispatching on the
// TransactionType field.
func FromJSON(data []byte) (Transaction, error) {
	var head struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed transaction: %w", err)
	}

	t, ok := TypeFromName(head.TransactionType)
	if !ok {
		return nil, fmt.Errorf("unknown transaction type %q", head.TransactionType)
	}

	txn, err := NewFromType(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, fmt.Errorf("malformed %s transaction: %w", head.TransactionType, err)
	}
	return txn, nil
}
