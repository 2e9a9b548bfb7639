package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/domain/mocks"
)

func sendFixtures() (domain.CandidateMatch, domain.Pessoa, domain.Vaga) {
	match := domain.CandidateMatch{
		ID: "m-1", PessoaID: "p-1", VagaID: "v-1",
		Score: 85, SkillsCompativeis: []string{"Go"}, Status: domain.MatchSelecionado,
	}
	pessoa := domain.Pessoa{ID: "p-1", Nome: "Ana", Resumo: "Dev backend experiente."}
	vaga := domain.Vaga{ID: "v-1", Titulo: "Dev Go Sênior"}
	return match, pessoa, vaga
}

func Test_SendService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		match, pessoa, vaga := sendFixtures()
		sends := new(mocks.MockSendRepository)
		matches := new(mocks.MockMatchRepository)
		pessoas := new(mocks.MockPessoaRepository)
		vagas := new(mocks.MockVagaRepository)
		mailer := new(mocks.MockMailer)
		matches.On("Get", ctx, "m-1").Return(match, nil)
		pessoas.On("Get", ctx, "p-1").Return(pessoa, nil)
		vagas.On("Get", ctx, "v-1").Return(vaga, nil)
		sends.On("Create", ctx, mock.MatchedBy(func(s domain.CandidatureSend) bool {
			return s.MatchID == "m-1" && s.Destinatario == "rh@cliente.com" &&
				strings.Contains(s.Assunto, "Dev Go Sênior")
		})).Return("s-1", nil)
		mailer.On("Send", ctx, "rh@cliente.com", mock.Anything, mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "Ana") && strings.Contains(html, "85%")
		}), mock.Anything).Return("msg-123", nil)
		sends.On("SetMensagemID", ctx, "s-1", "msg-123").Return(nil)

		svc := NewSendService(sends, matches, pessoas, vagas, mailer)
		send, err := svc.Send(ctx, "m-1", "rh@cliente.com")
		require.NoError(t, err)
		assert.Equal(t, "s-1", send.ID)
		assert.Equal(t, "msg-123", send.MensagemID)
		sends.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("only selected matches can be sent", func(t *testing.T) {
		match, _, _ := sendFixtures()
		match.Status = domain.MatchNovo
		sends := new(mocks.MockSendRepository)
		matches := new(mocks.MockMatchRepository)
		matches.On("Get", ctx, "m-1").Return(match, nil)

		svc := NewSendService(sends, matches, new(mocks.MockPessoaRepository), new(mocks.MockVagaRepository), new(mocks.MockMailer))
		_, err := svc.Send(ctx, "m-1", "rh@cliente.com")
		assert.ErrorIs(t, err, domain.ErrConflict)
		sends.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("mail failure keeps the send row without mensagem id", func(t *testing.T) {
		match, pessoa, vaga := sendFixtures()
		sends := new(mocks.MockSendRepository)
		matches := new(mocks.MockMatchRepository)
		pessoas := new(mocks.MockPessoaRepository)
		vagas := new(mocks.MockVagaRepository)
		mailer := new(mocks.MockMailer)
		matches.On("Get", ctx, "m-1").Return(match, nil)
		pessoas.On("Get", ctx, "p-1").Return(pessoa, nil)
		vagas.On("Get", ctx, "v-1").Return(vaga, nil)
		sends.On("Create", ctx, mock.Anything).Return("s-2", nil)
		mailer.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", domain.ErrProvider)

		svc := NewSendService(sends, matches, pessoas, vagas, mailer)
		_, err := svc.Send(ctx, "m-1", "rh@cliente.com")
		assert.ErrorIs(t, err, domain.ErrProvider)
		sends.AssertCalled(t, "Create", ctx, mock.Anything)
		sends.AssertNotCalled(t, "SetMensagemID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing destinatario rejected", func(t *testing.T) {
		svc := NewSendService(new(mocks.MockSendRepository), new(mocks.MockMatchRepository), new(mocks.MockPessoaRepository), new(mocks.MockVagaRepository), new(mocks.MockMailer))
		_, err := svc.Send(ctx, "m-1", "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
