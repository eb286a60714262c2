package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLoan_ApplyInstallment(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		balance     string
		installment string
		wantApplied string
		wantChanged bool
		wantBalance string
		wantStatus  Status
	}{
		{"partial payment keeps loan active", StatusActive, "5000", "500", "500", true, "4500", StatusActive},
		{"exact payoff marks paid", StatusActive, "500", "500", "500", true, "0", StatusPaid},
		{"overpayment is capped at balance", StatusActive, "300", "500", "300", true, "0", StatusPaid},
		{"zero installment is ignored", StatusActive, "5000", "0", "0", false, "5000", StatusActive},
		{"zero balance is ignored", StatusActive, "0", "500", "0", false, "0", StatusActive},
		{"pending loan is ignored", StatusPending, "5000", "500", "0", false, "5000", StatusPending},
		{"defaulted loan is ignored", StatusDefaulted, "5000", "500", "0", false, "5000", StatusDefaulted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Loan{Status: tt.status, BalanceAmount: d(tt.balance)}

			applied, changed := l.ApplyInstallment(d(tt.installment))

			assert.Equal(t, tt.wantChanged, changed)
			assert.True(t, applied.Equal(d(tt.wantApplied)), "applied = %s", applied)
			assert.True(t, l.BalanceAmount.Equal(d(tt.wantBalance)), "balance = %s", l.BalanceAmount)
			assert.Equal(t, tt.wantStatus, l.Status)
		})
	}
}

func TestLoan_ApplyInstallment_NeverNegative(t *testing.T) {
	l := Loan{Status: StatusActive, BalanceAmount: d("1250")}
	for i := 0; i < 5; i++ {
		l.ApplyInstallment(d("500"))
		assert.False(t, l.BalanceAmount.IsNegative())
	}
	assert.True(t, l.BalanceAmount.IsZero())
	assert.Equal(t, StatusPaid, l.Status)
}

func TestLoan_CanTransitionTo(t *testing.T) {
	assert.True(t, Loan{Status: StatusPending}.CanTransitionTo(StatusActive))
	assert.True(t, Loan{Status: StatusPending}.CanTransitionTo(StatusCancelled))
	assert.True(t, Loan{Status: StatusActive}.CanTransitionTo(StatusDefaulted))

	assert.False(t, Loan{Status: StatusActive}.CanTransitionTo(StatusCancelled))
	assert.False(t, Loan{Status: StatusActive}.CanTransitionTo(StatusPaid))
	assert.False(t, Loan{Status: StatusPaid}.CanTransitionTo(StatusActive))
	assert.False(t, Loan{Status: StatusCancelled}.CanTransitionTo(StatusActive))
}

func TestTerms(t *testing.T) {
	total, monthly := Terms(d("10000"), d("5"), 12)
	assert.Equal(t, "10500", total.String())
	assert.Equal(t, "875", monthly.String())

	total, monthly = Terms(d("10000"), d("0"), 3)
	assert.Equal(t, "10000", total.String())
	assert.Equal(t, "3333.33", monthly.String())
}

func TestLoan_Schedule(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	total, monthly := Terms(d("10000"), d("0"), 3)
	l := Loan{
		TotalPayable:        total,
		BalanceAmount:       d("6666.67"),
		MonthlyAmortization: monthly,
		TermMonths:          3,
		StartDate:           start,
	}

	entries := l.Schedule()
	require.Len(t, entries, 3)

	assert.Equal(t, "3333.33", entries[0].Amount.String())
	assert.Equal(t, "3333.33", entries[1].Amount.String())
	assert.Equal(t, "3333.34", entries[2].Amount.String())
	assert.True(t, entries[2].RemainingBalance.IsZero())
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), entries[2].DueDate)

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.Equal(total))

	assert.True(t, entries[0].Settled)
	assert.False(t, entries[1].Settled)
	assert.False(t, entries[2].Settled)
}
