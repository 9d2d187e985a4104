package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRadioLoanReturnFlow(t *testing.T) {
	loan := RadioLoan{Radios: []string{"R1", "R2", "R3"}, Status: LoanActive}
	now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	loan.Exchange("R2", "R7", "sem bateria", now)
	assert.Equal(t, []string{"R1", "R7", "R3"}, loan.Radios)
	assert.True(t, loan.Holds("R7"))
	assert.False(t, loan.Holds("R2"))

	loan.Return([]string{"R1"}, now)
	assert.Equal(t, LoanPartial, loan.Status)
	assert.Equal(t, []string{"R7", "R3"}, loan.Outstanding())
	assert.False(t, loan.IsClosed())

	loan.Return([]string{"R7", "R3"}, now.Add(time.Hour))
	assert.Equal(t, LoanReturned, loan.Status)
	assert.True(t, loan.IsClosed())
	assert.Empty(t, loan.Outstanding())
	if assert.NotNil(t, loan.ReturnedAt) {
		assert.True(t, loan.ReturnedAt.Equal(now.Add(time.Hour)))
	}
}

func TestRadioLoanExchangeForReturnedRadio(t *testing.T) {
	loan := RadioLoan{Radios: []string{"A", "B"}, Status: LoanActive}
	now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	loan.Return([]string{"A"}, now)
	assert.Equal(t, []string{"B"}, loan.Outstanding())

	loan.Exchange("B", "A", "", now.Add(time.Minute))
	assert.Equal(t, []string{"A"}, loan.Outstanding())
	assert.True(t, loan.Holds("A"))
	assert.False(t, loan.Holds("B"))

	loan.Return([]string{"A"}, now.Add(time.Hour))
	assert.Empty(t, loan.Outstanding())
	assert.Equal(t, LoanReturned, loan.Status)
}
