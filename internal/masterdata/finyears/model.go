package finyears

import "time"

// FinancialYear is the posting window for a company. A closed year rejects
// new or edited vouchers dated inside its range; exactly one year per
// company is active at a time.
type FinancialYear struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	IsClosed  bool      `json:"is_closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether date falls inside the year's range.
func (y FinancialYear) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(y.StartDate) && !d.After(y.EndDate)
}
