package companies

import "time"

// Company is the tenant boundary: every ledger, voucher, invoice, and
// financial year belongs to exactly one company.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
