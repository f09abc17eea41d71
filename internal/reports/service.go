package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/invoice"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

// ErrUnclassified is returned when a ledger's group type is not one of
// the five known classifications. Reports fail loudly instead of
// silently dropping the ledger, which would break the trial balance
// invariant.
var ErrUnclassified = fmt.Errorf("reports: ledger group type not classified")

// Service computes financial statements and GST return extracts. Every
// number is derived from persisted entries at call time; nothing is
// cached.
type Service struct {
	repo          Repository
	logger        *slog.Logger
	b2cLargeLimit decimal.Decimal
}

func NewService(repo Repository, logger *slog.Logger, b2cLargeLimit decimal.Decimal) *Service {
	return &Service{repo: repo, logger: logger, b2cLargeLimit: b2cLargeLimit}
}

func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (TrialBalance, error) {
	rows, err := s.repo.ClosingActivities(ctx, companyID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	return buildTrialBalance(asOf, rows)
}

func (s *Service) ProfitAndLoss(ctx context.Context, companyID int64, from, to time.Time) (ProfitAndLoss, error) {
	rows, err := s.repo.PeriodActivities(ctx, companyID, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return buildProfitAndLoss(from, to, rows)
}

func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	rows, err := s.repo.ClosingActivities(ctx, companyID, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	return buildBalanceSheet(asOf, rows)
}

func (s *Service) GSTR1(ctx context.Context, companyID int64, from, to time.Time) (GSTR1, error) {
	rows, err := s.repo.SalesInvoices(ctx, companyID, from, to)
	if err != nil {
		return GSTR1{}, err
	}
	return classifyGSTR1(from, to, rows, s.b2cLargeLimit), nil
}

func (s *Service) GSTR3B(ctx context.Context, companyID int64, from, to time.Time) (GSTR3B, error) {
	out := GSTR3B{From: from, To: to}
	sales, err := s.repo.TaxTotals(ctx, companyID, string(invoice.TypeSales), from, to)
	if err != nil {
		return GSTR3B{}, err
	}
	creditNotes, err := s.repo.TaxTotals(ctx, companyID, string(invoice.TypeCreditNote), from, to)
	if err != nil {
		return GSTR3B{}, err
	}
	purchases, err := s.repo.TaxTotals(ctx, companyID, string(invoice.TypePurchase), from, to)
	if err != nil {
		return GSTR3B{}, err
	}
	debitNotes, err := s.repo.TaxTotals(ctx, companyID, string(invoice.TypeDebitNote), from, to)
	if err != nil {
		return GSTR3B{}, err
	}
	out.OutwardSupplies = subtractSummary(sales, creditNotes)
	out.EligibleITC = subtractSummary(purchases, debitNotes)
	return out, nil
}

// buildTrialBalance keeps one row per ledger with a nonzero closing
// balance, presented on its balance side.
func buildTrialBalance(asOf time.Time, rows []activityRow) (TrialBalance, error) {
	tb := TrialBalance{AsOf: asOf}
	for _, row := range rows {
		if !row.GroupType.Valid() {
			return TrialBalance{}, fmt.Errorf("%w: ledger %q group type %q", ErrUnclassified, row.LedgerName, row.GroupType)
		}
		balance := row.Activity.Balance()
		if balance.Amount.IsZero() {
			continue
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			LedgerID:       row.LedgerID,
			LedgerName:     row.LedgerName,
			GroupName:      row.GroupName,
			GroupType:      row.GroupType,
			ClosingBalance: balance.Amount,
			Side:           balance.Side,
		})
		if balance.Side == ledgers.SideDr {
			tb.TotalDebit = tb.TotalDebit.Add(balance.Amount)
		} else {
			tb.TotalCredit = tb.TotalCredit.Add(balance.Amount)
		}
	}
	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(voucher.Epsilon)
	return tb, nil
}

// buildProfitAndLoss sums income and expense activity over the period.
// A negative net on an income ledger (a contra balance) subtracts from
// total income rather than moving to the expense column.
func buildProfitAndLoss(from, to time.Time, rows []activityRow) (ProfitAndLoss, error) {
	pl := ProfitAndLoss{From: from, To: to}
	for _, row := range rows {
		if !row.GroupType.Valid() {
			return ProfitAndLoss{}, fmt.Errorf("%w: ledger %q group type %q", ErrUnclassified, row.LedgerName, row.GroupType)
		}
		net := row.Activity.Net()
		if net.IsZero() {
			continue
		}
		entry := StatementRow{LedgerID: row.LedgerID, LedgerName: row.LedgerName, GroupName: row.GroupName, Amount: net}
		switch row.GroupType {
		case groups.GroupTypeIncome:
			pl.Income = append(pl.Income, entry)
			pl.TotalIncome = pl.TotalIncome.Add(net)
		case groups.GroupTypeExpense:
			pl.Expenses = append(pl.Expenses, entry)
			pl.TotalExpenses = pl.TotalExpenses.Add(net)
		}
	}
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpenses)
	if pl.NetProfit.IsNegative() {
		pl.NetProfitType = "Loss"
	} else {
		pl.NetProfitType = "Profit"
	}
	return pl, nil
}

// buildBalanceSheet sums asset closings against liability and equity
// closings. The difference between the two sides is reported as is;
// when current-period profit has not been rolled into equity it shows
// up here.
func buildBalanceSheet(asOf time.Time, rows []activityRow) (BalanceSheet, error) {
	bs := BalanceSheet{AsOf: asOf}
	for _, row := range rows {
		if !row.GroupType.Valid() {
			return BalanceSheet{}, fmt.Errorf("%w: ledger %q group type %q", ErrUnclassified, row.LedgerName, row.GroupType)
		}
		net := row.Activity.Net()
		if net.IsZero() {
			continue
		}
		entry := StatementRow{LedgerID: row.LedgerID, LedgerName: row.LedgerName, GroupName: row.GroupName, Amount: net}
		switch row.GroupType {
		case groups.GroupTypeAsset:
			bs.Assets = append(bs.Assets, entry)
			bs.TotalAssets = bs.TotalAssets.Add(net)
		case groups.GroupTypeLiability, groups.GroupTypeEquity:
			bs.Liabilities = append(bs.Liabilities, entry)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(net)
		}
	}
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilities)
	return bs, nil
}

// classifyGSTR1 sorts outward invoices into the three return buckets.
// A registered party goes to B2B regardless of value; unregistered
// interstate invoices at or above the limit go to B2C large; everything
// else aggregates into B2C small by place of supply.
func classifyGSTR1(from, to time.Time, rows []gstrInvoiceRow, largeLimit decimal.Decimal) GSTR1 {
	out := GSTR1{From: from, To: to}
	small := map[string]*GSTR1StateSummary{}
	var order []string
	for _, row := range rows {
		inv := row.GSTR1Invoice
		inv.PlaceOfSupply = row.PartyState
		if inv.PlaceOfSupply == "" {
			inv.PlaceOfSupply = row.CompanyState
		}
		switch {
		case row.PartyGSTIN != "":
			out.B2B = append(out.B2B, inv)
		case interstate(row.CompanyState, row.PartyState) && row.GrandTotal.GreaterThanOrEqual(largeLimit):
			out.B2CLarge = append(out.B2CLarge, inv)
		default:
			bucket, ok := small[inv.PlaceOfSupply]
			if !ok {
				bucket = &GSTR1StateSummary{PlaceOfSupply: inv.PlaceOfSupply}
				small[inv.PlaceOfSupply] = bucket
				order = append(order, inv.PlaceOfSupply)
			}
			bucket.TaxableValue = bucket.TaxableValue.Add(inv.TaxableValue)
			bucket.CGST = bucket.CGST.Add(inv.CGST)
			bucket.SGST = bucket.SGST.Add(inv.SGST)
			bucket.IGST = bucket.IGST.Add(inv.IGST)
		}
	}
	for _, state := range order {
		out.B2CSmall = append(out.B2CSmall, *small[state])
	}
	return out
}

func interstate(companyState, partyState string) bool {
	return companyState == "" || partyState == "" || companyState != partyState
}

func subtractSummary(a, b TaxSummary) TaxSummary {
	return TaxSummary{
		TaxableValue: a.TaxableValue.Sub(b.TaxableValue),
		IGST:         a.IGST.Sub(b.IGST),
		CGST:         a.CGST.Sub(b.CGST),
		SGST:         a.SGST.Sub(b.SGST),
	}
}
