package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestRadioLoanLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	loan, err := env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{
		EventID:      event.ID,
		BorrowerName: " Equipe de Som ",
		BorrowerCPF:  "529.982.247-25",
		Radios:       []string{"R01", " R02 ", "R03"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Equipe de Som", loan.BorrowerName)
	assert.Equal(t, validCPF, loan.BorrowerCPF)
	assert.Equal(t, domain.LoanActive, loan.Status)
	assert.Equal(t, []string{"R01", "R02", "R03"}, loan.Outstanding())

	_, err = env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "Outro", Radios: []string{"R02"}})
	assert.ErrorIs(t, err, ErrRadioUnavailable)

	loan, err = env.radios.ExchangeRadio(ctx, env.admin, event.ID, loan.ID, "R02", "R10", "bateria")
	require.NoError(t, err)
	assert.Equal(t, []string{"R01", "R10", "R03"}, loan.Radios)
	require.Len(t, loan.Exchanges, 1)
	assert.Equal(t, "bateria", loan.Exchanges[0].Reason)

	// R02 went back to the pool
	other, err := env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "Outro", Radios: []string{"R02"}})
	require.NoError(t, err)

	_, err = env.radios.ExchangeRadio(ctx, env.admin, event.ID, loan.ID, "R01", "R02", "")
	assert.ErrorIs(t, err, ErrRadioUnavailable)

	loan, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"R01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPartial, loan.Status)
	assert.Nil(t, loan.ReturnedAt)

	_, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"R01"}, nil)
	assert.ErrorIs(t, err, ErrRadioNotOnLoan)

	count, err := env.radios.OutstandingCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	loan, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"R10", "R03"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, loan.Status)
	assert.NotNil(t, loan.ReturnedAt)
	assert.Len(t, loan.Returns, 2)

	_, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"R10"}, nil)
	assert.ErrorIs(t, err, ErrLoanClosed)

	open, err := env.radios.ListLoans(ctx, event.ID, domain.RadioLoanFilter{Status: domain.LoanActive})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, other.ID, open[0].ID)

	found, err := env.radios.ListLoans(ctx, event.ID, domain.RadioLoanFilter{Search: "som"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, loan.ID, found[0].ID)
}

func TestExchangeForRadioReturnedOnSameLoan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	loan, err := env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{
		EventID:      event.ID,
		BorrowerName: "Segurança",
		Radios:       []string{"A", "B"},
	})
	require.NoError(t, err)

	_, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"A"}, nil)
	require.NoError(t, err)

	loan, err = env.radios.ExchangeRadio(ctx, env.admin, event.ID, loan.ID, "B", "A", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, loan.Outstanding())
	assert.Equal(t, domain.LoanPartial, loan.Status)

	count, err := env.radios.OutstandingCount(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "Outro", Radios: []string{"A"}})
	assert.ErrorIs(t, err, ErrRadioUnavailable)

	loan, err = env.radios.ReturnRadios(ctx, env.admin, event.ID, loan.ID, []string{"A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, loan.Status)
	assert.Empty(t, loan.Outstanding())
}

func TestCreateLoanValidatesCodes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	_, err := env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "A", Radios: []string{" "}})
	assert.ErrorIs(t, err, ErrNoRadios)

	_, err = env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "A", Radios: []string{"R1", "R1"}})
	assert.ErrorIs(t, err, ErrDuplicateRadio)

	_, err = env.radios.GetLoan(ctx, event.ID, 999)
	assert.ErrorIs(t, err, ErrRadioLoanNotFound)
}
