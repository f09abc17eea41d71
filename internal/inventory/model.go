package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a stock-keeping unit. Quantity moves as a side effect of
// invoice posting and is reversed symmetrically on invoice edit/delete.
type Item struct {
	ID             int64           `json:"id"`
	CompanyID      int64           `json:"company_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TrackInventory bool            `json:"track_inventory"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
