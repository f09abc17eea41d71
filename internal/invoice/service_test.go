package invoice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

type memoryVoucher struct {
	id      int64
	vType   string
	date    time.Time
	entries []voucher.EntryInput
}

// memoryInvoiceRepo implements Repository and TxRepository against
// maps. WithTx runs the callback directly; failed callbacks leave
// partial state behind, so tests only assert state after success.
type memoryInvoiceRepo struct {
	invoices   map[int64]*Invoice
	items      map[int64][]Item
	payments   map[int64]*Payment
	vouchers   map[int64]*memoryVoucher
	stock      map[int64]decimal.Decimal
	years      []finyears.FinancialYear
	taxLedgers taxLedgerSet
	company    string
	states     map[int64]string

	nextInvoiceID int64
	nextPaymentID int64
	nextVoucherID int64
	nextItemID    int64
}

var (
	_ Repository   = (*memoryInvoiceRepo)(nil)
	_ TxRepository = memoryTx{}
)

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{
		invoices:   map[int64]*Invoice{},
		items:      map[int64][]Item{},
		payments:   map[int64]*Payment{},
		vouchers:   map[int64]*memoryVoucher{},
		stock:      map[int64]decimal.Decimal{},
		taxLedgers: taxLedgerSet{CGST: 31, SGST: 32, IGST: 33},
		company:    "Maharashtra",
		states:     map[int64]string{10: "Maharashtra", 20: "Maharashtra", 40: "Maharashtra"},
	}
}

func (r *memoryInvoiceRepo) List(ctx context.Context, f ListFilters) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == f.CompanyID {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

func (r *memoryInvoiceRepo) GetWithItems(ctx context.Context, companyID, invoiceID int64) (Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok || inv.CompanyID != companyID {
		return Invoice{}, ErrInvoiceNotFound
	}
	copied := *inv
	copied.Items = r.items[invoiceID]
	copied.OutstandingAmount = outstandingAmount(copied.GrandTotal, copied.PaidAmount)
	return copied, nil
}

func (r *memoryInvoiceRepo) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]Payment, error) {
	return r.listPayments(invoiceID), nil
}

func (r *memoryInvoiceRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, memoryTx{r})
}

// memoryTx is the transactional view of the fake. It only exists to
// carry the two-argument ListPayments the transaction surface uses.
type memoryTx struct {
	*memoryInvoiceRepo
}

func (t memoryTx) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return t.listPayments(invoiceID), nil
}

func (r *memoryInvoiceRepo) InsertInvoice(ctx context.Context, inv *Invoice) error {
	r.nextInvoiceID++
	inv.ID = r.nextInvoiceID
	inv.PaidAmount = decimal.Zero
	inv.PaymentStatus = StatusUnpaid
	stored := *inv
	r.invoices[inv.ID] = &stored
	return nil
}

func (r *memoryInvoiceRepo) InsertItems(ctx context.Context, invoiceID int64, items []Item) error {
	for _, it := range items {
		r.nextItemID++
		it.ID = r.nextItemID
		it.InvoiceID = invoiceID
		r.items[invoiceID] = append(r.items[invoiceID], it)
	}
	return nil
}

func (r *memoryInvoiceRepo) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return ErrInvoiceNotFound
	}
	paid, status := stored.PaidAmount, stored.PaymentStatus
	*stored = *inv
	stored.PaidAmount, stored.PaymentStatus = paid, status
	return nil
}

func (r *memoryInvoiceRepo) DeleteItems(ctx context.Context, invoiceID int64) error {
	delete(r.items, invoiceID)
	return nil
}

func (r *memoryInvoiceRepo) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	if _, ok := r.invoices[invoiceID]; !ok {
		return ErrInvoiceNotFound
	}
	delete(r.invoices, invoiceID)
	return nil
}

func (r *memoryInvoiceRepo) GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok || inv.CompanyID != companyID {
		return Invoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (r *memoryInvoiceRepo) ListItems(ctx context.Context, invoiceID int64) ([]Item, error) {
	return r.items[invoiceID], nil
}

func (r *memoryInvoiceRepo) UpdatePaymentState(ctx context.Context, invoiceID int64, paid decimal.Decimal, status PaymentStatus) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.PaidAmount = paid
	inv.PaymentStatus = status
	return nil
}

func (r *memoryInvoiceRepo) InsertPayment(ctx context.Context, p *Payment) error {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	stored := *p
	r.payments[p.ID] = &stored
	return nil
}

func (r *memoryInvoiceRepo) DeletePayment(ctx context.Context, paymentID int64) error {
	if _, ok := r.payments[paymentID]; !ok {
		return ErrPaymentNotFound
	}
	delete(r.payments, paymentID)
	return nil
}

func (r *memoryInvoiceRepo) GetPaymentForUpdate(ctx context.Context, invoiceID, paymentID int64) (Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok || p.InvoiceID != invoiceID {
		return Payment{}, ErrPaymentNotFound
	}
	return *p, nil
}

func (r *memoryInvoiceRepo) listPayments(invoiceID int64) []Payment {
	var out []Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out
}

func (r *memoryInvoiceRepo) InsertVoucher(ctx context.Context, companyID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) (int64, error) {
	r.nextVoucherID++
	r.vouchers[r.nextVoucherID] = &memoryVoucher{id: r.nextVoucherID, vType: voucherType, date: date, entries: entries}
	return r.nextVoucherID, nil
}

func (r *memoryInvoiceRepo) ReplaceVoucherEntries(ctx context.Context, voucherID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) error {
	v, ok := r.vouchers[voucherID]
	if !ok {
		return voucher.ErrVoucherNotFound
	}
	v.vType = voucherType
	v.date = date
	v.entries = entries
	return nil
}

func (r *memoryInvoiceRepo) DeleteVoucher(ctx context.Context, voucherID int64) error {
	delete(r.vouchers, voucherID)
	return nil
}

func (r *memoryInvoiceRepo) YearForDate(ctx context.Context, companyID int64, d time.Time) (finyears.FinancialYear, bool, error) {
	for _, y := range r.years {
		if y.CompanyID == companyID && !d.Before(y.StartDate) && !d.After(y.EndDate) {
			return y, true, nil
		}
	}
	return finyears.FinancialYear{}, false, nil
}

func (r *memoryInvoiceRepo) AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error {
	r.stock[itemID] = r.stock[itemID].Add(delta)
	return nil
}

func (r *memoryInvoiceRepo) TaxLedgers(ctx context.Context, companyID int64) (taxLedgerSet, error) {
	return r.taxLedgers, nil
}

func (r *memoryInvoiceRepo) CompanyState(ctx context.Context, companyID int64) (string, error) {
	return r.company, nil
}

func (r *memoryInvoiceRepo) LedgerState(ctx context.Context, companyID, ledgerID int64) (string, error) {
	state, ok := r.states[ledgerID]
	if !ok {
		return "", voucher.ErrLedgerNotFound
	}
	return state, nil
}

func testDate(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func setup() (*Service, *memoryInvoiceRepo) {
	repo := newMemoryInvoiceRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func salesInput() CreateInput {
	itemID := int64(7)
	return CreateInput{
		CompanyID:     1,
		Type:          TypeSales,
		InvoiceNumber: "INV-001",
		Date:          testDate(2025, 6, 1),
		PartyLedgerID: 10,
		SalesLedgerID: 20,
		Items: []ItemInput{
			{ItemID: &itemID, Description: "Widget", Quantity: dec("10"), Rate: dec("100"), TaxRatePercent: dec("18")},
		},
	}
}

func TestCreateSalesInvoice(t *testing.T) {
	svc, repo := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)
	require.True(t, inv.GrandTotal.Equal(dec("1180")))
	require.Equal(t, StatusUnpaid, inv.PaymentStatus)
	require.True(t, inv.OutstandingAmount.Equal(dec("1180")))

	// The generated voucher carries party, goods and two tax legs.
	v := repo.vouchers[inv.VoucherID]
	require.NotNil(t, v)
	require.Equal(t, "SALES", v.vType)
	require.Len(t, v.entries, 4)

	// Stock moved out.
	require.True(t, repo.stock[7].Equal(dec("-10")))
}

func TestCreateRejectsClosedYear(t *testing.T) {
	svc, repo := setup()
	repo.years = append(repo.years, finyears.FinancialYear{
		ID: 1, CompanyID: 1, Name: "FY 2025-26",
		StartDate: testDate(2025, 4, 1), EndDate: testDate(2026, 3, 31),
		IsClosed: true,
	})
	_, err := svc.Create(context.Background(), salesInput())
	require.ErrorIs(t, err, voucher.ErrPeriodClosed)
}

func TestCreateRejectsUnknownPartyLedger(t *testing.T) {
	svc, _ := setup()
	in := salesInput()
	in.PartyLedgerID = 99
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, voucher.ErrLedgerNotFound)
}

func TestApplyPaymentTransitions(t *testing.T) {
	svc, repo := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)

	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("500"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPartial, repo.invoices[inv.ID].PaymentStatus)
	require.True(t, repo.invoices[inv.ID].PaidAmount.Equal(dec("500")))

	p2, err := svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 20), Amount: dec("680"), CashLedgerID: 40, PaymentMode: "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, repo.invoices[inv.ID].PaymentStatus)

	// Receipt voucher: Dr cash, Cr party.
	v := repo.vouchers[p2.VoucherID]
	require.Equal(t, "RECEIPT", v.vType)
	require.Len(t, v.entries, 2)
	require.Equal(t, int64(40), v.entries[0].LedgerID)
}

func TestApplyPaymentRejectsOverPayment(t *testing.T) {
	svc, _ := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)

	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("1180.02"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.ErrorIs(t, err, ErrOverPayment)
}

func TestOverpayWithinEpsilonClampsOutstanding(t *testing.T) {
	svc, _ := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)

	// One paisa over the grand total is tolerated, but outstanding must
	// bottom out at zero rather than go negative.
	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("1180.01"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, got.PaymentStatus)
	require.True(t, got.OutstandingAmount.IsZero(), "outstanding = %s", got.OutstandingAmount)
}

func TestReversePaymentRollsBackStatus(t *testing.T) {
	svc, repo := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)
	p, err := svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("1180"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, repo.invoices[inv.ID].PaymentStatus)

	require.NoError(t, svc.ReversePayment(context.Background(), 1, inv.ID, p.ID))
	require.Equal(t, StatusUnpaid, repo.invoices[inv.ID].PaymentStatus)
	require.Empty(t, repo.payments)
	_, voucherExists := repo.vouchers[p.VoucherID]
	require.False(t, voucherExists)
}

func TestDeleteBlockedByPayments(t *testing.T) {
	svc, _ := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("500"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 1, inv.ID, false)
	require.ErrorIs(t, err, ErrPaymentsExist)
}

func TestDeleteCascadesPaymentsAndReversesStock(t *testing.T) {
	svc, repo := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("500"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, inv.ID, true))
	require.Empty(t, repo.invoices)
	require.Empty(t, repo.payments)
	require.Empty(t, repo.vouchers)
	require.True(t, repo.stock[7].IsZero())
}

func TestUpdateReplacesLinesAndStock(t *testing.T) {
	svc, repo := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)

	in := salesInput()
	itemID := int64(7)
	in.Items = []ItemInput{
		{ItemID: &itemID, Description: "Widget", Quantity: dec("5"), Rate: dec("100"), TaxRatePercent: dec("18")},
	}
	updated, err := svc.Update(context.Background(), 1, inv.ID, in)
	require.NoError(t, err)
	require.True(t, updated.GrandTotal.Equal(dec("590")))

	// Old -10 reversed, new -5 applied.
	require.True(t, repo.stock[7].Equal(dec("-5")))
	require.Len(t, repo.vouchers[inv.VoucherID].entries, 4)
}

func TestUpdateRejectsShrinkingBelowPaid(t *testing.T) {
	svc, _ := setup()
	inv, err := svc.Create(context.Background(), salesInput())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(context.Background(), 1, inv.ID, PaymentInput{
		PaymentDate: testDate(2025, 6, 10), Amount: dec("1180"), CashLedgerID: 40, PaymentMode: "NEFT",
	})
	require.NoError(t, err)

	in := salesInput()
	itemID := int64(7)
	in.Items = []ItemInput{
		{ItemID: &itemID, Description: "Widget", Quantity: dec("5"), Rate: dec("100"), TaxRatePercent: dec("18")},
	}
	_, err = svc.Update(context.Background(), 1, inv.ID, in)
	require.ErrorIs(t, err, ErrOverPayment)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := setup()
	in := salesInput()
	in.Type = "PROFORMA"
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidType)

	in = salesInput()
	in.Items[0].Quantity = decimal.Zero
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrNegativeAmount)
}
