package tax

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeIntrastateSplitsHalfHalf(t *testing.T) {
	split := Compute(dec("1000"), dec("18"), "Maharashtra", "Maharashtra")
	if !split.CGST.Equal(dec("90")) || !split.SGST.Equal(dec("90")) {
		t.Fatalf("expected CGST=SGST=90, got CGST=%s SGST=%s", split.CGST, split.SGST)
	}
	if !split.IGST.IsZero() {
		t.Fatalf("expected zero IGST for intrastate supply, got %s", split.IGST)
	}
	if !split.Total().Equal(dec("180")) {
		t.Fatalf("expected total 180, got %s", split.Total())
	}
}

func TestComputeInterstateIsAllIGST(t *testing.T) {
	split := Compute(dec("1000"), dec("18"), "Maharashtra", "Delhi")
	if !split.IGST.Equal(dec("180")) {
		t.Fatalf("expected IGST 180, got %s", split.IGST)
	}
	if !split.CGST.IsZero() || !split.SGST.IsZero() {
		t.Fatalf("expected zero CGST/SGST for interstate supply, got %s/%s", split.CGST, split.SGST)
	}
}

func TestComputeMissingStateTreatedAsInterstate(t *testing.T) {
	for _, tc := range []struct{ company, party string }{
		{"", "Delhi"},
		{"Maharashtra", ""},
		{"", ""},
	} {
		split := Compute(dec("500"), dec("12"), tc.company, tc.party)
		if !split.IGST.Equal(dec("60")) {
			t.Fatalf("company=%q party=%q: expected IGST 60, got %s", tc.company, tc.party, split.IGST)
		}
		if !split.CGST.IsZero() || !split.SGST.IsZero() {
			t.Fatalf("company=%q party=%q: expected zero CGST/SGST", tc.company, tc.party)
		}
	}
}

func TestComputeRoundsToPaise(t *testing.T) {
	split := Compute(dec("333.33"), dec("18"), "Karnataka", "Karnataka")
	// 333.33 * 18% = 59.9994, halved to 29.9997, rounded to 30.00 each.
	if !split.CGST.Equal(dec("30")) || !split.SGST.Equal(dec("30")) {
		t.Fatalf("expected CGST=SGST=30.00, got %s/%s", split.CGST, split.SGST)
	}
}

func TestComputeZeroRate(t *testing.T) {
	split := Compute(dec("1000"), decimal.Zero, "Karnataka", "Delhi")
	if !split.Total().IsZero() {
		t.Fatalf("expected zero tax at zero rate, got %s", split.Total())
	}
}
