package groups

import "time"

// GroupType enumerates chart-of-accounts classifications.
type GroupType string

const (
	GroupTypeAsset     GroupType = "ASSET"
	GroupTypeLiability GroupType = "LIABILITY"
	GroupTypeIncome    GroupType = "INCOME"
	GroupTypeExpense   GroupType = "EXPENSE"
	GroupTypeEquity    GroupType = "EQUITY"
)

// Valid reports whether t is a known classification.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeAsset, GroupTypeLiability, GroupTypeIncome, GroupTypeExpense, GroupTypeEquity:
		return true
	}
	return false
}

// Group classifies ledgers for balance-sign and report-bucket purposes.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      GroupType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
