package escrow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	tu "github.com/Windi-Fikriyansyah/freelancehub_be/internal/testutil"
)

type fixture struct {
	db         *gorm.DB
	svc        *EscrowService
	notifier   *tu.RecordingNotifier
	metrics    *metrics.Metrics
	client     *models.Profile
	freelancer *models.Profile
	contract   *models.Contract
	payment    *models.Payment
}

func setup(t *testing.T, status models.PaymentStatus) *fixture {
	t.Helper()
	gdb := tu.NewDB(t)
	client := tu.CreateProfile(t, gdb, models.RoleClient, "clara")
	freelancer := tu.CreateProfile(t, gdb, models.RoleFreelancer, "fred")
	project := tu.CreateProject(t, gdb, client, models.ProjectInProgress)
	contract, payment := tu.CreateContract(t, gdb, project, freelancer, 1500, status)

	n := &tu.RecordingNotifier{}
	m := metrics.New()
	return &fixture{
		db: gdb, svc: NewEscrowService(gdb, n, m), notifier: n, metrics: m,
		client: client, freelancer: freelancer, contract: contract, payment: payment,
	}
}

func (f *fixture) ledger(t *testing.T) []models.Transaction {
	t.Helper()
	var txs []models.Transaction
	require.NoError(t, f.db.Where("payment_id = ?", f.payment.ID).Order("created_at ASC").Find(&txs).Error)
	return txs
}

func TestEscrowThenRelease(t *testing.T) {
	f := setup(t, models.PaymentPending)
	ctx := context.Background()

	p, err := f.svc.Apply(ctx, f.client.ID, f.payment.ID, ActionEscrow)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentEscrowed, p.Status)
	assert.NotNil(t, p.EscrowDate)

	p, err = f.svc.Apply(ctx, f.client.ID, f.payment.ID, ActionRelease)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentReleased, p.Status)
	assert.NotNil(t, p.ReleaseDate)

	txs := f.ledger(t)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TransactionEscrow, txs[0].Type)
	assert.Equal(t, models.TransactionRelease, txs[1].Type)
	for _, tx := range txs {
		assert.Equal(t, int64(1500), tx.Amount)
	}

	var stored models.Payment
	require.NoError(t, f.db.First(&stored, "id = ?", f.payment.ID).Error)
	assert.Equal(t, models.PaymentReleased, stored.Status)

	assert.Equal(t, []string{EventPaymentUpdated, EventPaymentUpdated}, f.notifier.Types())
	sent := f.notifier.Sent()
	assert.ElementsMatch(t, []uuid.UUID{f.client.ID, f.freelancer.ID}, sent[1].To)
	series, err := testutil.GatherAndCount(f.metrics.Registry(), "freelancehub_escrow_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestRefund(t *testing.T) {
	f := setup(t, models.PaymentEscrowed)

	p, err := f.svc.Apply(context.Background(), f.client.ID, f.payment.ID, ActionRefund)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, p.Status)
	assert.NotNil(t, p.RefundDate)

	txs := f.ledger(t)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionRefund, txs[0].Type)
}

func TestOnlyClientMayTransition(t *testing.T) {
	f := setup(t, models.PaymentEscrowed)

	for _, actor := range []uuid.UUID{f.freelancer.ID, uuid.New()} {
		_, err := f.svc.Apply(context.Background(), actor, f.payment.ID, ActionRelease)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	}

	assert.Empty(t, f.ledger(t))
	assert.Empty(t, f.notifier.Sent())
}

func TestRepeatedTransitionIsNoop(t *testing.T) {
	f := setup(t, models.PaymentEscrowed)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, f.client.ID, f.payment.ID, ActionRelease)
	require.NoError(t, err)

	p, err := f.svc.Apply(ctx, f.client.ID, f.payment.ID, ActionRelease)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentReleased, p.Status)

	assert.Len(t, f.ledger(t), 1)
	assert.Len(t, f.notifier.Sent(), 1)
}

func TestTerminalPaymentRejectsOtherTransitions(t *testing.T) {
	f := setup(t, models.PaymentReleased)
	ctx := context.Background()

	for _, a := range []Action{ActionRefund, ActionEscrow} {
		_, err := f.svc.Apply(ctx, f.client.ID, f.payment.ID, a)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict), "action %s", a)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Empty(t, f.ledger(t))
}

func TestReleaseRequiresEscrow(t *testing.T) {
	f := setup(t, models.PaymentPending)

	_, err := f.svc.Apply(context.Background(), f.client.ID, f.payment.ID, ActionRelease)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestApplyTxCompareAndSet(t *testing.T) {
	f := setup(t, models.PaymentEscrowed)

	// stale copy still believes the payment is pending
	stale := *f.payment
	stale.Status = models.PaymentPending

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.ApplyTx(tx, &stale, ActionEscrow, "stale")
		return err
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	assert.Empty(t, f.ledger(t))
}

func TestUnknownPayment(t *testing.T) {
	f := setup(t, models.PaymentEscrowed)

	_, err := f.svc.Apply(context.Background(), f.client.ID, uuid.New(), ActionRelease)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = f.svc.Apply(context.Background(), f.client.ID, f.payment.ID, Action("withdraw"))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}

func TestListAndGet(t *testing.T) {
	f := setup(t, models.PaymentPending)
	ctx := context.Background()
	_, err := f.svc.Apply(ctx, f.client.ID, f.payment.ID, ActionEscrow)
	require.NoError(t, err)

	for _, uid := range []uuid.UUID{f.client.ID, f.freelancer.ID} {
		list, err := f.svc.ListForUser(ctx, uid, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, f.contract.ID, list[0].ContractID)
	}

	list, err := f.svc.ListForUser(ctx, f.client.ID, string(models.PaymentReleased))
	require.NoError(t, err)
	assert.Empty(t, list)

	detail, err := f.svc.Get(ctx, f.freelancer.ID, models.RoleFreelancer, f.payment.ID)
	require.NoError(t, err)
	require.Len(t, detail.Transactions, 1)
	assert.Equal(t, models.TransactionEscrow, detail.Transactions[0].Type)

	_, err = f.svc.Get(ctx, uuid.New(), models.RoleClient, f.payment.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	_, err = f.svc.Get(ctx, uuid.New(), models.RoleAdmin, f.payment.ID)
	assert.NoError(t, err)
}

func TestLedgerRowsAreAppendOnly(t *testing.T) {
	f := setup(t, models.PaymentPending)
	_, err := f.svc.Apply(context.Background(), f.client.ID, f.payment.ID, ActionEscrow)
	require.NoError(t, err)

	txs := f.ledger(t)
	require.Len(t, txs, 1)
	row := txs[0]

	err = f.db.Model(&row).Update("amount", 1).Error
	assert.ErrorIs(t, err, models.ErrLedgerImmutable)

	err = f.db.Model(&models.Transaction{}).Where("payment_id = ?", f.payment.ID).Update("description", "edited").Error
	assert.ErrorIs(t, err, models.ErrLedgerImmutable)

	err = f.db.Where("payment_id = ?", f.payment.ID).Delete(&models.Transaction{}).Error
	assert.ErrorIs(t, err, models.ErrLedgerImmutable)

	after := f.ledger(t)
	require.Len(t, after, 1)
	assert.Equal(t, int64(1500), after[0].Amount)
	assert.Equal(t, row.Description, after[0].Description)
}
