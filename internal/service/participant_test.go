package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestCreateParticipantNormalizesAndChecksCPF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	p, err := env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:  event.ID,
		Name:     "  Maria Souza ",
		CPF:      "529.982.247-25",
		Email:    " Maria@Example.COM",
		WorkDays: []string{"2024-07-11", "2024-07-10", "2024-07-11"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", p.Name)
	assert.Equal(t, validCPF, p.CPF)
	assert.Equal(t, "maria@example.com", p.Email)
	assert.Equal(t, []string{"2024-07-10", "2024-07-11"}, p.WorkDays)
	assert.Equal(t, domain.StatusAbsent, p.CurrentStatus())

	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID: event.ID,
		Name:    "Outra Maria",
		CPF:     validCPF,
	})
	assert.ErrorIs(t, err, ErrParticipantCPFExists)

	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID: event.ID,
		Name:    "CPF errado",
		CPF:     "123.456.789-00",
	})
	assert.ErrorIs(t, err, ErrInvalidCPF)

	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:  event.ID,
		Name:     "Fora da agenda",
		WorkDays: []string{"2024-08-01"},
	})
	assert.ErrorIs(t, err, ErrInvalidWorkDays)
}

func TestSameCPFIsAllowedInAnotherEvent(t *testing.T) {
	env := newTestEnv(t)
	first := env.createEvent(t)
	second := env.createEvent(t)

	env.createParticipant(t, first.ID, "Maria", validCPF)
	p := env.createParticipant(t, second.ID, "Maria", validCPF)
	assert.Equal(t, second.ID, p.EventID)
}

func TestParticipantCredentialMustBelongToEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	other := env.createEvent(t)

	credential, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: other.ID, Name: "Staff"})
	require.NoError(t, err)

	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:      event.ID,
		Name:         "João",
		CredentialID: &credential.ID,
	})
	assert.ErrorIs(t, err, ErrCredentialNotInEvent)
}

func TestUpdateParticipantKeepsAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	_, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, nil, "")
	require.NoError(t, err)

	p.Name = "Maria Clara"
	p.CheckIn = nil
	updated, err := env.participants.UpdateParticipant(ctx, env.admin, p)
	require.NoError(t, err)
	assert.Equal(t, "Maria Clara", updated.Name)
	assert.NotNil(t, updated.CheckIn)

	_, err = env.participants.GetParticipant(ctx, event.ID+100, p.ID)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestListParticipantsSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	credential, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Produção"})
	require.NoError(t, err)

	joao := env.createParticipant(t, event.ID, "João Silva", validCPF)
	joana := env.createParticipant(t, event.ID, "Joana Lima", otherValidCPF)
	env.createParticipant(t, event.ID, "Pedro Alves", "")

	joana.CredentialID = &credential.ID
	_, err = env.participants.UpdateParticipant(ctx, env.admin, joana)
	require.NoError(t, err)

	page, err := env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{Search: "joao"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, joao.ID, page.Items[0].ID)

	page, err = env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{Search: "jo"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{Search: "jo", CredentialID: &credential.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, joana.ID, page.Items[0].ID)

	page, err = env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{Search: "529.982.247-25"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, joao.ID, page.Items[0].ID)

	page, err = env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Joana Lima", page.Items[0].Name)
}

func TestDeleteParticipantDropsItFromSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	ids, err := env.participants.Search(ctx, event.ID, "maria")
	require.NoError(t, err)
	assert.Equal(t, []uint{p.ID}, ids)

	require.NoError(t, env.participants.DeleteParticipant(ctx, env.admin, event.ID, p.ID))

	ids, err = env.participants.Search(ctx, event.ID, "maria")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
