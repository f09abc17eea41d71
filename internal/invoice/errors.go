package invoice

import "errors"

var (
	// ErrInvoiceNotFound indicates a missing invoice.
	ErrInvoiceNotFound = errors.New("invoice: not found")
	// ErrPaymentNotFound indicates a missing payment.
	ErrPaymentNotFound = errors.New("invoice: payment not found")
	// ErrOverPayment indicates a payment beyond the outstanding amount.
	ErrOverPayment = errors.New("invoice: payment exceeds outstanding amount")
	// ErrPaymentsExist blocks invoice deletion while payments remain,
	// unless the caller explicitly cascades.
	ErrPaymentsExist = errors.New("invoice: payments exist; pass cascade to delete them too")
	// ErrTaxLedgerNotMapped indicates a missing GST ledger mapping.
	ErrTaxLedgerNotMapped = errors.New("invoice: tax ledger not mapped for company")
	// ErrInvalidType indicates an unknown invoice type.
	ErrInvalidType = errors.New("invoice: invalid type")
	// ErrNegativeAmount indicates a zero or negative quantity, rate or amount
	// where a positive value is required.
	ErrNegativeAmount = errors.New("invoice: amounts must be positive")
)
