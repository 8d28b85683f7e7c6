package authorizer

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is the three-way result of an authorization attempt. A rejection
// is a successful call that said no; a channel error means the call itself
// failed and the caller may retry. The two are never collapsed.
type Outcome int

const (
	Approved Outcome = iota
	Rejected
	ChannelError
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	default:
		return "channel_error"
	}
}

// Decision carries the outcome and the authorizer's human-readable reason
// for anything other than an approval.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// ExternalAuthorizer asks a bank-side system whether a debit pull is
// authorized. Implementations must bound the call's latency.
type ExternalAuthorizer interface {
	Authorize(targetAccountID uuid.UUID, bank string, amount decimal.Decimal) Decision
}
