package tx

import (
	"time"

	"github.com/takulai/takd/internal/core/addr"
)

// ApplyContext provides the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable).
	View StateView

	// SourceID is the parsed source account address.
	SourceID addr.Address

	// Config holds engine configuration (close time, ledger sequence).
	Config EngineConfig

	// Metadata collects the changes made by the transaction.
	Metadata *Metadata
}

// CloseTime returns the host-supplied timestamp the transaction executes at.
// Time never comes from the submitting party.
func (ctx *ApplyContext) CloseTime() time.Time {
	return ctx.Config.CloseTime
}

// Now returns the close time as unix seconds.
func (ctx *ApplyContext) Now() int64 {
	return ctx.Config.CloseTime.Unix()
}
