package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// SendService presents a selected candidate to the client contact by email
// and records the send. The record insert and the email are two independent
// writes: a mail failure after the insert leaves the row without a message
// id rather than rolling anything back.
type SendService struct {
	Sends   domain.SendRepository
	Matches domain.MatchRepository
	Pessoas domain.PessoaRepository
	Vagas   domain.VagaRepository
	Mailer  domain.Mailer
}

// NewSendService constructs a SendService with its dependencies.
func NewSendService(s domain.SendRepository, m domain.MatchRepository, p domain.PessoaRepository, v domain.VagaRepository, mail domain.Mailer) SendService {
	return SendService{Sends: s, Matches: m, Pessoas: p, Vagas: v, Mailer: mail}
}

// Send emails the candidate presentation for a match and returns the send
// record. Only selected matches can be sent.
func (s SendService) Send(ctx domain.Context, matchID, destinatario string) (domain.CandidatureSend, error) {
	if destinatario == "" {
		return domain.CandidatureSend{}, fmt.Errorf("%w: destinatario required", domain.ErrInvalidArgument)
	}
	match, err := s.Matches.Get(ctx, matchID)
	if err != nil {
		return domain.CandidatureSend{}, err
	}
	if match.Status != domain.MatchSelecionado {
		return domain.CandidatureSend{}, fmt.Errorf("%w: match must be selecionado to send, is %s", domain.ErrConflict, match.Status)
	}
	pessoa, err := s.Pessoas.Get(ctx, match.PessoaID)
	if err != nil {
		return domain.CandidatureSend{}, err
	}
	vaga, err := s.Vagas.Get(ctx, match.VagaID)
	if err != nil {
		return domain.CandidatureSend{}, err
	}

	send := domain.CandidatureSend{
		MatchID:      matchID,
		PessoaID:     match.PessoaID,
		VagaID:       match.VagaID,
		Destinatario: destinatario,
		Assunto:      fmt.Sprintf("Candidato para a vaga %s", vaga.Titulo),
		CreatedAt:    time.Now().UTC(),
	}
	sendID, err := s.Sends.Create(ctx, send)
	if err != nil {
		return domain.CandidatureSend{}, err
	}
	send.ID = sendID

	htmlBody, textBody := presentationBody(pessoa, vaga, match)
	mensagemID, err := s.Mailer.Send(ctx, destinatario, send.Assunto, htmlBody, textBody)
	if err != nil {
		// The send row stays without a mensagem_id; the caller sees the
		// provider failure.
		return domain.CandidatureSend{}, err
	}
	if err := s.Sends.SetMensagemID(ctx, sendID, mensagemID); err != nil {
		return domain.CandidatureSend{}, err
	}
	send.MensagemID = mensagemID
	return send, nil
}

func presentationBody(pessoa domain.Pessoa, vaga domain.Vaga, match domain.CandidateMatch) (html, text string) {
	skills := strings.Join(match.SkillsCompativeis, ", ")
	html = fmt.Sprintf(
		"<p>Olá,</p><p>Apresentamos <strong>%s</strong> para a vaga <strong>%s</strong>.</p><p>Compatibilidade: %d%%.<br>Skills aderentes: %s.</p><p>%s</p>",
		pessoa.Nome, vaga.Titulo, match.Score, skills, pessoa.Resumo)
	text = fmt.Sprintf("Olá,\n\nApresentamos %s para a vaga %s.\nCompatibilidade: %d%%.\nSkills aderentes: %s.\n\n%s",
		pessoa.Nome, vaga.Titulo, match.Score, skills, pessoa.Resumo)
	return html, text
}
