package money

import (
	"errors"
	"math"
	"testing"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		amount   Money
		num, den int64
		want     Money
	}{
		{"five percent of 250 rupees", 25000, 500, 10000, 1250},
		{"half rounds up", 10, 500, 10000, 1},        // 0.5 -> 1
		{"below half rounds down", 9, 500, 10000, 0}, // 0.45 -> 0
		{"zero amount", 0, 500, 10000, 0},
		{"exact", 20000, 1, 4, 5000},
		{"negative rounds away from zero", -10, 500, 10000, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentage(tt.amount, tt.num, tt.den)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Percentage(%d, %d, %d) = %d, want %d", tt.amount, tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestDivideEvenlyReconciles(t *testing.T) {
	for amount := Money(0); amount <= 1000; amount++ {
		for n := int64(1); n <= 12; n++ {
			per, rem, err := DivideEvenly(amount, n)
			if err != nil {
				t.Fatalf("DivideEvenly(%d, %d): %v", amount, n, err)
			}
			if rem < 0 || rem >= n {
				t.Fatalf("remainder %d out of range for n=%d", rem, n)
			}
			a, err := Multiply(per, n-rem)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Multiply(per+1, rem)
			if err != nil {
				t.Fatal(err)
			}
			if total := a + b; total != amount {
				t.Fatalf("DivideEvenly(%d, %d) reconciles to %d", amount, n, a+b)
			}

			shares, err := Shares(amount, n)
			if err != nil {
				t.Fatalf("Shares(%d, %d): %v", amount, n, err)
			}
			if got, err := Sum(shares...); err != nil || got != amount {
				t.Fatalf("Shares(%d, %d) sum = %d", amount, n, got)
			}
		}
	}
}

func TestSharesAllocatesRemainderToFirst(t *testing.T) {
	shares, err := Shares(26250, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []Money{6563, 6563, 6562, 6562}
	for i := range want {
		if shares[i] != want[i] {
			t.Fatalf("shares = %v, want %v", shares, want)
		}
	}
}

func TestDivideEvenlyRejectsBadInput(t *testing.T) {
	if _, _, err := DivideEvenly(100, 0); !errors.Is(err, ErrInvalidDivisor) {
		t.Errorf("n=0: expected ErrInvalidDivisor, got %v", err)
	}
	if _, _, err := DivideEvenly(-1, 2); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative: expected ErrNegativeAmount, got %v", err)
	}
}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		display string
	}{
		{"120", 12000, "120.00"},
		{"12.5", 1250, "12.50"},
		{"262.50", 26250, "262.50"},
		{"0.005", 1, "0.01"},
		{"0", 0, "0.00"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if got.String() != tt.display {
			t.Errorf("String() = %q, want %q", got.String(), tt.display)
		}
	}

	if _, err := Parse("abc"); err == nil {
		t.Error("expected parse error for abc")
	}
	if _, err := Parse("-3"); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	for _, in := range []string{"1e20", "92233720368547758.08"} {
		if _, err := Parse(in); !errors.Is(err, ErrOverflow) {
			t.Errorf("Parse(%q): expected ErrOverflow, got %v", in, err)
		}
	}
	if got, err := Parse("92233720368547758.07"); err != nil || got != math.MaxInt64 {
		t.Errorf("largest amount: got %d, %v", got, err)
	}
}

func TestArithmeticOverflow(t *testing.T) {
	if _, err := Multiply(FromMajor(100), 1<<60); !errors.Is(err, ErrOverflow) {
		t.Errorf("Multiply: expected ErrOverflow, got %v", err)
	}
	if _, err := Multiply(math.MinInt64, -1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Multiply by -1: expected ErrOverflow, got %v", err)
	}
	if got, err := Multiply(FromMajor(100), 99); err != nil || got != 990000 {
		t.Errorf("Multiply in range = %d, %v", got, err)
	}

	if _, err := Add(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Add: expected ErrOverflow, got %v", err)
	}
	if _, err := Add(math.MinInt64, -1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Add negative: expected ErrOverflow, got %v", err)
	}
	if _, err := Sum(math.MaxInt64-1, 1, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Sum: expected ErrOverflow, got %v", err)
	}

	if _, err := Percentage(math.MaxInt64/100, 500, 10000); !errors.Is(err, ErrOverflow) {
		t.Errorf("Percentage: expected ErrOverflow, got %v", err)
	}
	if got, err := Percentage(math.MaxInt64/10000, 500, 10000); err != nil || got <= 0 {
		t.Errorf("Percentage near the limit = %d, %v", got, err)
	}
}
