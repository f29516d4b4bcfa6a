package escrow

import (
	"errors"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

type Action string

const (
	ActionEscrow  Action = "escrow"
	ActionRelease Action = "release"
	ActionRefund  Action = "refund"
)

var ErrInvalidTransition = errors.New("invalid payment transition")

type edge struct {
	from   models.PaymentStatus
	action Action
}

type step struct {
	to     models.PaymentStatus
	txType models.TransactionType
}

var table = map[edge]step{
	{models.PaymentPending, ActionEscrow}:   {models.PaymentEscrowed, models.TransactionEscrow},
	{models.PaymentEscrowed, ActionRelease}: {models.PaymentReleased, models.TransactionRelease},
	{models.PaymentEscrowed, ActionRefund}:  {models.PaymentRefunded, models.TransactionRefund},
}

// Next returns the status reached by applying action to a payment in from,
// and the ledger type recorded for it.
func Next(from models.PaymentStatus, action Action) (models.PaymentStatus, models.TransactionType, error) {
	s, ok := table[edge{from, action}]
	if !ok {
		return "", "", ErrInvalidTransition
	}
	return s.to, s.txType, nil
}

// Target is the status an action leads to, regardless of the starting state.
func Target(action Action) (models.PaymentStatus, bool) {
	switch action {
	case ActionEscrow:
		return models.PaymentEscrowed, true
	case ActionRelease:
		return models.PaymentReleased, true
	case ActionRefund:
		return models.PaymentRefunded, true
	}
	return "", false
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := Target(a)
	return a, ok
}

func Terminal(s models.PaymentStatus) bool {
	return s == models.PaymentReleased || s == models.PaymentRefunded
}
