package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

var voucherTypes = map[Type]string{
	TypeSales:      "SALES",
	TypePurchase:   "PURCHASE",
	TypeCreditNote: "CREDIT_NOTE",
	TypeDebitNote:  "DEBIT_NOTE",
}

// Service posts invoices and payments. Every mutation materializes a
// balanced voucher inside the same transaction as the document itself.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Invoice, int, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, companyID, invoiceID int64) (Invoice, error) {
	return s.repo.GetWithItems(ctx, companyID, invoiceID)
}

func (s *Service) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, companyID, invoiceID)
}

// Create computes totals and tax splits server side, posts the invoice
// voucher atomically and moves stock for tracked items.
func (s *Service) Create(ctx context.Context, in CreateInput) (Invoice, error) {
	if err := in.Validate(); err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := guardYear(ctx, tx, in.CompanyID, in.Date); err != nil {
			return err
		}
		items, totals, entries, err := s.assemble(ctx, tx, in)
		if err != nil {
			return err
		}
		voucherID, err := tx.InsertVoucher(ctx, in.CompanyID, voucherTypes[in.Type], in.Date,
			narration(in), entries)
		if err != nil {
			return err
		}
		inv := Invoice{
			CompanyID:             in.CompanyID,
			Type:                  in.Type,
			InvoiceNumber:         in.InvoiceNumber,
			Date:                  in.Date,
			DueDate:               in.DueDate,
			PartyLedgerID:         in.PartyLedgerID,
			SalesLedgerID:         in.SalesLedgerID,
			DiscountPercent:       in.DiscountPercent,
			OriginalInvoiceNumber: in.OriginalInvoiceNumber,
			OriginalInvoiceDate:   in.OriginalInvoiceDate,
			Subtotal:              totals.Subtotal,
			TaxTotal:              totals.TaxTotal,
			DiscountAmount:        totals.DiscountAmount,
			GrandTotal:            totals.GrandTotal,
			VoucherID:             voucherID,
		}
		if err := tx.InsertInvoice(ctx, &inv); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, inv.ID, items); err != nil {
			return err
		}
		if err := moveStock(ctx, tx, in.Type, items, 1); err != nil {
			return err
		}
		inv.Items = items
		inv.OutstandingAmount = inv.GrandTotal
		out = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice created", "invoice_id", out.ID, "type", out.Type,
		"company_id", out.CompanyID, "grand_total", out.GrandTotal)
	return out, nil
}

// Update replaces the invoice lines and rebuilds the voucher in place,
// keeping the voucher id stable. Stock moved by the old lines is
// reversed before the new lines apply.
func (s *Service) Update(ctx context.Context, companyID, invoiceID int64, in CreateInput) (Invoice, error) {
	if err := in.Validate(); err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetInvoiceForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, companyID, existing.Date); err != nil {
			return err
		}
		if err := guardYear(ctx, tx, companyID, in.Date); err != nil {
			return err
		}
		items, totals, entries, err := s.assemble(ctx, tx, in)
		if err != nil {
			return err
		}
		if existing.PaidAmount.Sub(totals.GrandTotal).GreaterThan(voucher.Epsilon) {
			return ErrOverPayment
		}
		oldItems, err := tx.ListItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := moveStock(ctx, tx, existing.Type, oldItems, -1); err != nil {
			return err
		}
		if err := tx.ReplaceVoucherEntries(ctx, existing.VoucherID, voucherTypes[in.Type], in.Date,
			narration(in), entries); err != nil {
			return err
		}
		inv := existing
		inv.Type = in.Type
		inv.InvoiceNumber = in.InvoiceNumber
		inv.Date = in.Date
		inv.DueDate = in.DueDate
		inv.PartyLedgerID = in.PartyLedgerID
		inv.SalesLedgerID = in.SalesLedgerID
		inv.DiscountPercent = in.DiscountPercent
		inv.OriginalInvoiceNumber = in.OriginalInvoiceNumber
		inv.OriginalInvoiceDate = in.OriginalInvoiceDate
		inv.Subtotal = totals.Subtotal
		inv.TaxTotal = totals.TaxTotal
		inv.DiscountAmount = totals.DiscountAmount
		inv.GrandTotal = totals.GrandTotal
		if err := tx.UpdateInvoice(ctx, &inv); err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, invoiceID); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, invoiceID, items); err != nil {
			return err
		}
		if err := moveStock(ctx, tx, in.Type, items, 1); err != nil {
			return err
		}
		if err := tx.UpdatePaymentState(ctx, invoiceID, inv.PaidAmount, paymentStatus(inv.PaidAmount, inv.GrandTotal)); err != nil {
			return err
		}
		inv.PaymentStatus = paymentStatus(inv.PaidAmount, inv.GrandTotal)
		inv.Items = items
		inv.OutstandingAmount = outstandingAmount(inv.GrandTotal, inv.PaidAmount)
		out = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice updated", "invoice_id", out.ID, "company_id", companyID)
	return out, nil
}

// Delete removes the invoice, its voucher and its stock movements.
// When payments exist the caller must pass cascade, which also removes
// each payment and its voucher.
func (s *Service) Delete(ctx context.Context, companyID, invoiceID int64, cascade bool) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, companyID, inv.Date); err != nil {
			return err
		}
		payments, err := tx.ListPayments(ctx, invoiceID)
		if err != nil {
			return err
		}
		if len(payments) > 0 && !cascade {
			return ErrPaymentsExist
		}
		for _, p := range payments {
			if err := tx.DeleteVoucher(ctx, p.VoucherID); err != nil {
				return err
			}
			if err := tx.DeletePayment(ctx, p.ID); err != nil {
				return err
			}
		}
		items, err := tx.ListItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := moveStock(ctx, tx, inv.Type, items, -1); err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, invoiceID); err != nil {
			return err
		}
		if err := tx.DeleteInvoice(ctx, invoiceID); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, inv.VoucherID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("invoice deleted", "invoice_id", invoiceID, "company_id", companyID, "cascade", cascade)
	return nil
}

// ApplyPayment posts a receipt or payment voucher against the invoice
// and advances its payment status. Paying more than the outstanding
// amount is rejected.
func (s *Service) ApplyPayment(ctx context.Context, companyID, invoiceID int64, in PaymentInput) (Payment, error) {
	if err := in.Validate(); err != nil {
		return Payment{}, err
	}
	var out Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, companyID, in.PaymentDate); err != nil {
			return err
		}
		outstanding := outstandingAmount(inv.GrandTotal, inv.PaidAmount)
		if in.Amount.Sub(outstanding).GreaterThan(voucher.Epsilon) {
			return ErrOverPayment
		}
		cashSide, partySide := paymentDirection(inv.Type)
		voucherID, err := tx.InsertVoucher(ctx, companyID, paymentVoucherType(inv.Type), in.PaymentDate,
			fmt.Sprintf("%s against invoice %s", in.PaymentMode, inv.InvoiceNumber),
			[]voucher.EntryInput{
				{LedgerID: in.CashLedgerID, Amount: in.Amount, Side: cashSide, InstrumentNumber: in.ReferenceNumber},
				{LedgerID: inv.PartyLedgerID, Amount: in.Amount, Side: partySide},
			})
		if err != nil {
			return err
		}
		p := Payment{
			InvoiceID:       invoiceID,
			VoucherID:       voucherID,
			PaymentDate:     in.PaymentDate,
			Amount:          in.Amount,
			PaymentMode:     in.PaymentMode,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
		}
		if err := tx.InsertPayment(ctx, &p); err != nil {
			return err
		}
		paid := inv.PaidAmount.Add(in.Amount)
		if err := tx.UpdatePaymentState(ctx, invoiceID, paid, paymentStatus(paid, inv.GrandTotal)); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return Payment{}, err
	}
	s.logger.Info("payment applied", "invoice_id", invoiceID, "payment_id", out.ID, "amount", out.Amount)
	return out, nil
}

// ReversePayment deletes a payment and its voucher and rolls the
// invoice's payment status back.
func (s *Service) ReversePayment(ctx context.Context, companyID, invoiceID, paymentID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		p, err := tx.GetPaymentForUpdate(ctx, invoiceID, paymentID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, companyID, p.PaymentDate); err != nil {
			return err
		}
		if err := tx.DeleteVoucher(ctx, p.VoucherID); err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		paid := inv.PaidAmount.Sub(p.Amount)
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		return tx.UpdatePaymentState(ctx, invoiceID, paid, paymentStatus(paid, inv.GrandTotal))
	})
	if err != nil {
		return err
	}
	s.logger.Info("payment reversed", "invoice_id", invoiceID, "payment_id", paymentID)
	return nil
}

// assemble resolves states and tax ledgers, computes the lines and
// builds the voucher entry set for in.
func (s *Service) assemble(ctx context.Context, tx TxRepository, in CreateInput) ([]Item, Totals, []voucher.EntryInput, error) {
	companyState, err := tx.CompanyState(ctx, in.CompanyID)
	if err != nil {
		return nil, Totals{}, nil, err
	}
	partyState, err := tx.LedgerState(ctx, in.CompanyID, in.PartyLedgerID)
	if err != nil {
		return nil, Totals{}, nil, err
	}
	if _, err := tx.LedgerState(ctx, in.CompanyID, in.SalesLedgerID); err != nil {
		return nil, Totals{}, nil, err
	}
	taxLedgers, err := tx.TaxLedgers(ctx, in.CompanyID)
	if err != nil {
		return nil, Totals{}, nil, err
	}
	items, totals := computeItems(in.Items, in.DiscountPercent, companyState, partyState)
	entries, err := buildEntries(in.Type, in.PartyLedgerID, in.SalesLedgerID, taxLedgers, totals)
	if err != nil {
		return nil, Totals{}, nil, err
	}
	return items, totals, entries, nil
}

// moveStock applies each line's quantity to tracked items. factor is +1
// to apply the document and -1 to reverse it.
func moveStock(ctx context.Context, tx TxRepository, t Type, items []Item, factor int64) error {
	dir, ok := directions[t]
	if !ok {
		return ErrInvalidType
	}
	sign := decimal.NewFromInt(dir.StockSign * factor)
	for _, it := range items {
		if it.ItemID == nil {
			continue
		}
		if err := tx.AdjustStock(ctx, *it.ItemID, it.Quantity.Mul(sign)); err != nil {
			return err
		}
	}
	return nil
}

func guardYear(ctx context.Context, tx TxRepository, companyID int64, date time.Time) error {
	year, found, err := tx.YearForDate(ctx, companyID, date)
	if err != nil {
		return err
	}
	if found && year.IsClosed {
		return fmt.Errorf("%w: financial year %s", voucher.ErrPeriodClosed, year.Name)
	}
	return nil
}

func paymentStatus(paid, grand decimal.Decimal) PaymentStatus {
	switch {
	case paid.Sign() <= 0:
		return StatusUnpaid
	case grand.Sub(paid).LessThanOrEqual(voucher.Epsilon):
		return StatusPaid
	default:
		return StatusPartial
	}
}

func paymentVoucherType(t Type) string {
	if t == TypeSales || t == TypeDebitNote {
		return "RECEIPT"
	}
	return "PAYMENT"
}

func narration(in CreateInput) string {
	if in.Narration != "" {
		return in.Narration
	}
	return fmt.Sprintf("%s invoice %s", voucherTypes[in.Type], in.InvoiceNumber)
}
