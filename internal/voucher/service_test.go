package voucher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

// memoryRepo backs the service with maps; WithTx runs the callback
// against the same store and discards nothing, so tests assert on the
// final state only when the callback succeeded.
type memoryRepo struct {
	vouchers    map[int64]*Voucher
	entries     map[int64][]Entry
	ledgerIDs   map[int64]bool
	years       []finyears.FinancialYear
	sourceLinks map[string]int64
	nextID      int64
	nextEntryID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		vouchers:    make(map[int64]*Voucher),
		entries:     make(map[int64][]Entry),
		ledgerIDs:   make(map[int64]bool),
		sourceLinks: make(map[string]int64),
	}
}

func (r *memoryRepo) List(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error) {
	var out []Voucher
	for _, v := range r.vouchers {
		if v.CompanyID == companyID && !v.Date.Before(from) && !v.Date.After(to) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetWithEntries(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	v, ok := r.vouchers[voucherID]
	if !ok || v.CompanyID != companyID {
		return Voucher{}, ErrVoucherNotFound
	}
	copied := *v
	copied.Entries = r.entries[voucherID]
	return copied, nil
}

func (r *memoryRepo) Activity(ctx context.Context, companyID, ledgerID int64, asOf time.Time) (LedgerActivity, error) {
	if !r.ledgerIDs[ledgerID] {
		return LedgerActivity{}, ErrLedgerNotFound
	}
	act := LedgerActivity{LedgerID: ledgerID, NaturalSide: ledgers.SideDr, OpeningSide: ledgers.SideDr}
	for voucherID, entries := range r.entries {
		v := r.vouchers[voucherID]
		if v == nil || v.CompanyID != companyID || v.Date.After(asOf) {
			continue
		}
		for _, e := range entries {
			if e.LedgerID != ledgerID {
				continue
			}
			if e.Side == ledgers.SideDr {
				act.Debit = act.Debit.Add(e.Amount)
			} else {
				act.Credit = act.Credit.Add(e.Amount)
			}
		}
	}
	return act, nil
}

func (r *memoryRepo) StatementRows(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementRow, error) {
	var out []StatementRow
	for voucherID, entries := range r.entries {
		v := r.vouchers[voucherID]
		if v == nil || v.CompanyID != companyID || v.Date.Before(from) || v.Date.After(to) {
			continue
		}
		for _, e := range entries {
			if e.LedgerID == ledgerID {
				out = append(out, StatementRow{Entry: e, VoucherNumber: v.VoucherNumber, VoucherType: v.VoucherType, Date: v.Date})
			}
		}
	}
	return out, nil
}

func (r *memoryRepo) SetBankAllocationDate(ctx context.Context, companyID, entryID int64, date *time.Time) error {
	for voucherID, entries := range r.entries {
		for i := range entries {
			if entries[i].ID == entryID {
				r.entries[voucherID][i].BankAllocationDate = date
				return nil
			}
		}
	}
	return ErrEntryNotFound
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) InsertVoucher(ctx context.Context, in PostingInput) (Voucher, error) {
	r.nextID++
	v := Voucher{
		ID:            r.nextID,
		CompanyID:     in.CompanyID,
		VoucherType:   in.VoucherType,
		VoucherNumber: r.nextID,
		Date:          in.Date,
		Narration:     in.Narration,
		SourceModule:  in.SourceModule,
		SourceID:      in.SourceID,
	}
	r.vouchers[v.ID] = &v
	return v, nil
}

func (r *memoryRepo) InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error {
	for _, in := range entries {
		r.nextEntryID++
		r.entries[voucherID] = append(r.entries[voucherID], Entry{
			ID:        r.nextEntryID,
			VoucherID: voucherID,
			LedgerID:  in.LedgerID,
			Amount:    in.Amount,
			Side:      in.Side,
		})
	}
	return nil
}

func (r *memoryRepo) DeleteEntries(ctx context.Context, voucherID int64) error {
	delete(r.entries, voucherID)
	return nil
}

func (r *memoryRepo) DeleteVoucher(ctx context.Context, voucherID int64) error {
	if _, ok := r.vouchers[voucherID]; !ok {
		return ErrVoucherNotFound
	}
	delete(r.vouchers, voucherID)
	return nil
}

func (r *memoryRepo) UpdateVoucherHeader(ctx context.Context, voucherID int64, in PostingInput) error {
	v, ok := r.vouchers[voucherID]
	if !ok {
		return ErrVoucherNotFound
	}
	v.VoucherType = in.VoucherType
	v.Date = in.Date
	v.Narration = in.Narration
	return nil
}

func (r *memoryRepo) GetVoucherForUpdate(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	return r.GetWithEntries(ctx, companyID, voucherID)
}

func (r *memoryRepo) YearForDate(ctx context.Context, companyID int64, date time.Time) (finyears.FinancialYear, bool, error) {
	for _, y := range r.years {
		if y.CompanyID == companyID && !date.Before(y.StartDate) && !date.After(y.EndDate) {
			return y, true, nil
		}
	}
	return finyears.FinancialYear{}, false, nil
}

func (r *memoryRepo) LedgerExists(ctx context.Context, companyID, ledgerID int64) (bool, error) {
	return r.ledgerIDs[ledgerID], nil
}

func (r *memoryRepo) LinkSource(ctx context.Context, module string, ref uuid.UUID, voucherID int64) error {
	key := module + "/" + ref.String()
	if _, ok := r.sourceLinks[key]; ok {
		return ErrSourceConflict
	}
	r.sourceLinks[key] = voucherID
	return nil
}

func (r *memoryRepo) UnlinkSource(ctx context.Context, voucherID int64) error {
	for key, id := range r.sourceLinks {
		if id == voucherID {
			delete(r.sourceLinks, key)
		}
	}
	return nil
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func setup() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	repo.ledgerIDs[1] = true
	repo.ledgerIDs[2] = true
	return NewService(repo), repo
}

func TestPostPersistsVoucherAndEntries(t *testing.T) {
	svc, repo := setup()
	in := validInput()
	posted, err := svc.Post(context.Background(), in)
	require.NoError(t, err)
	require.NotZero(t, posted.ID)
	require.Len(t, repo.entries[posted.ID], 2)
}

func TestPostRejectsUnknownLedger(t *testing.T) {
	svc, _ := setup()
	in := validInput()
	in.Entries[0].LedgerID = 99
	_, err := svc.Post(context.Background(), in)
	require.ErrorIs(t, err, ErrLedgerNotFound)
}

func TestPostRejectsClosedYear(t *testing.T) {
	svc, repo := setup()
	repo.years = append(repo.years, finyears.FinancialYear{
		ID: 1, CompanyID: 1, Name: "FY 2024-25",
		StartDate: date(2024, 4, 1), EndDate: date(2025, 3, 31),
		IsClosed: true,
	})
	in := validInput()
	in.Date = date(2024, 7, 15)
	_, err := svc.Post(context.Background(), in)
	require.ErrorIs(t, err, ErrPeriodClosed)
}

func TestPostAllowsDateOutsideAnyYear(t *testing.T) {
	svc, repo := setup()
	repo.years = append(repo.years, finyears.FinancialYear{
		ID: 1, CompanyID: 1, Name: "FY 2024-25",
		StartDate: date(2024, 4, 1), EndDate: date(2025, 3, 31),
		IsClosed: true,
	})
	in := validInput()
	in.Date = date(2025, 6, 1)
	_, err := svc.Post(context.Background(), in)
	require.NoError(t, err)
}

func TestPostLinksSourceOnce(t *testing.T) {
	svc, _ := setup()
	ref := uuid.New()
	in := validInput()
	in.SourceModule = "INVOICE"
	in.SourceID = ref
	_, err := svc.Post(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Post(context.Background(), in)
	require.ErrorIs(t, err, ErrSourceAlreadyLinked)
}

func TestReplaceSwapsEntries(t *testing.T) {
	svc, repo := setup()
	posted, err := svc.Post(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Entries = []EntryInput{
		{LedgerID: 1, Amount: dec("750"), Side: ledgers.SideDr},
		{LedgerID: 2, Amount: dec("750"), Side: ledgers.SideCr},
	}
	require.NoError(t, svc.Replace(context.Background(), posted.ID, in))
	entries := repo.entries[posted.ID]
	require.Len(t, entries, 2)
	require.True(t, entries[0].Amount.Equal(dec("750")))
}

func TestReplaceGuardsOldDate(t *testing.T) {
	svc, repo := setup()
	in := validInput()
	in.Date = date(2024, 7, 15)
	posted, err := svc.Post(context.Background(), in)
	require.NoError(t, err)

	// Close the year the voucher was posted into.
	repo.years = append(repo.years, finyears.FinancialYear{
		ID: 1, CompanyID: 1, Name: "FY 2024-25",
		StartDate: date(2024, 4, 1), EndDate: date(2025, 3, 31),
		IsClosed: true,
	})
	in.Date = date(2025, 6, 1)
	err = svc.Replace(context.Background(), posted.ID, in)
	require.ErrorIs(t, err, ErrPeriodClosed)
}

func TestDeleteRemovesVoucherEntriesAndLink(t *testing.T) {
	svc, repo := setup()
	in := validInput()
	in.SourceModule = "INVOICE"
	in.SourceID = uuid.New()
	posted, err := svc.Post(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, posted.ID))
	require.Empty(t, repo.vouchers)
	require.Empty(t, repo.entries[posted.ID])
	require.Empty(t, repo.sourceLinks)
}

func TestBalanceAsOfSumsEntries(t *testing.T) {
	svc, _ := setup()
	in := validInput()
	in.Date = date(2025, 6, 1)
	_, err := svc.Post(context.Background(), in)
	require.NoError(t, err)

	balance, err := svc.BalanceAsOf(context.Background(), 1, 1, date(2025, 6, 30))
	require.NoError(t, err)
	require.True(t, balance.Amount.Equal(dec("500")))
	require.Equal(t, ledgers.SideDr, balance.Side)

	// Before the voucher date the entry must not count.
	balance, err = svc.BalanceAsOf(context.Background(), 1, 1, date(2025, 5, 31))
	require.NoError(t, err)
	require.True(t, balance.Amount.IsZero())
}

func TestStatementRunningBalance(t *testing.T) {
	svc, _ := setup()
	for _, day := range []int{1, 2, 3} {
		in := validInput()
		in.Date = date(2025, 6, day)
		_, err := svc.Post(context.Background(), in)
		require.NoError(t, err)
	}
	statement, err := svc.Statement(context.Background(), 1, 1, date(2025, 6, 1), date(2025, 6, 30))
	require.NoError(t, err)
	require.Len(t, statement.Rows, 3)
	require.True(t, statement.Opening.Amount.IsZero())
	require.True(t, statement.Closing.Amount.Equal(dec("1500")))
}
