package voucher

import "errors"

var (
	// ErrUnbalanced indicates debit and credit totals differ beyond epsilon.
	ErrUnbalanced = errors.New("voucher: entries must balance")
	// ErrTooFewEntries indicates less than two entries.
	ErrTooFewEntries = errors.New("voucher: requires at least two entries")
	// ErrPeriodClosed indicates the target date falls in a closed financial year.
	ErrPeriodClosed = errors.New("voucher: financial year is closed")
	// ErrVoucherNotFound indicates a missing voucher.
	ErrVoucherNotFound = errors.New("voucher: not found")
	// ErrEntryNotFound indicates a missing voucher entry.
	ErrEntryNotFound = errors.New("voucher: entry not found")
	// ErrLedgerNotFound indicates a referenced ledger cannot be resolved.
	ErrLedgerNotFound = errors.New("voucher: ledger not found")
	// ErrSourceAlreadyLinked indicates an idempotency conflict on the source link.
	ErrSourceAlreadyLinked = errors.New("voucher: source already linked")
	// ErrSourceConflict indicates the source link row already exists.
	ErrSourceConflict = errors.New("voucher: source link conflict")
)
