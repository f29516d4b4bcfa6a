package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
)

func TestNextAllowedEdges(t *testing.T) {
	cases := []struct {
		from   models.PaymentStatus
		action Action
		to     models.PaymentStatus
		txType models.TransactionType
	}{
		{models.PaymentPending, ActionEscrow, models.PaymentEscrowed, models.TransactionEscrow},
		{models.PaymentEscrowed, ActionRelease, models.PaymentReleased, models.TransactionRelease},
		{models.PaymentEscrowed, ActionRefund, models.PaymentRefunded, models.TransactionRefund},
	}
	for _, tc := range cases {
		to, txType, err := Next(tc.from, tc.action)
		require.NoError(t, err, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.to, to)
		assert.Equal(t, tc.txType, txType)
	}
}

func TestNextNeverMovesBackward(t *testing.T) {
	statuses := []models.PaymentStatus{models.PaymentPending, models.PaymentEscrowed, models.PaymentReleased, models.PaymentRefunded}
	actions := []Action{ActionEscrow, ActionRelease, ActionRefund}
	rank := map[models.PaymentStatus]int{
		models.PaymentPending:  0,
		models.PaymentEscrowed: 1,
		models.PaymentReleased: 2,
		models.PaymentRefunded: 2,
	}

	allowed := 0
	for _, from := range statuses {
		for _, a := range actions {
			to, _, err := Next(from, a)
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				continue
			}
			allowed++
			assert.Greater(t, rank[to], rank[from], "%s + %s -> %s", from, a, to)
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []models.PaymentStatus{models.PaymentReleased, models.PaymentRefunded} {
		assert.True(t, Terminal(s))
		for _, a := range []Action{ActionEscrow, ActionRelease, ActionRefund} {
			_, _, err := Next(s, a)
			assert.Error(t, err)
		}
	}
	assert.False(t, Terminal(models.PaymentEscrowed))
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("release")
	assert.True(t, ok)
	assert.Equal(t, ActionRelease, a)

	_, ok = ParseAction("withdraw")
	assert.False(t, ok)
}
