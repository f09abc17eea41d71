package ledgers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
)

// Side is the debit/credit marker carried by opening balances and voucher
// entries.
type Side string

const (
	SideDr Side = "DR"
	SideCr Side = "CR"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideDr || s == SideCr
}

// Opposite flips the side.
func (s Side) Opposite() Side {
	if s == SideDr {
		return SideCr
	}
	return SideDr
}

// NaturalSide maps a group classification to the side on which its
// ledgers' balances grow. Every balance-sign decision in the engine goes
// through this single mapping.
func NaturalSide(t groups.GroupType) Side {
	switch t {
	case groups.GroupTypeAsset, groups.GroupTypeExpense:
		return SideDr
	default:
		return SideCr
	}
}

// Ledger is a financial account under a group. The engine reads ledgers;
// it never mutates them beyond derived balance queries.
type Ledger struct {
	ID                 int64           `json:"id"`
	CompanyID          int64           `json:"company_id"`
	GroupID            int64           `json:"group_id"`
	Name               string          `json:"name"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceSide Side            `json:"opening_balance_side"`
	State              string          `json:"state,omitempty"`
	GSTIN              string          `json:"gstin,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// LedgerWithGroup joins the group classification needed for balance signs.
type LedgerWithGroup struct {
	Ledger
	GroupName string           `json:"group_name"`
	GroupType groups.GroupType `json:"group_type"`
}
