package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		from MatchStatus
		to   MatchStatus
		ok   bool
	}{
		{"novo to visualizado", MatchNovo, MatchVisualizado, true},
		{"novo to descartado", MatchNovo, MatchDescartado, true},
		{"visualizado to selecionado", MatchVisualizado, MatchSelecionado, true},
		{"selecionado to candidatura_criada", MatchSelecionado, MatchCandidaturaCriada, true},
		{"descartado is terminal", MatchDescartado, MatchSelecionado, false},
		{"candidatura_criada is terminal", MatchCandidaturaCriada, MatchVisualizado, false},
		{"never back to novo", MatchVisualizado, MatchNovo, false},
		{"no self transition", MatchSelecionado, MatchSelecionado, false},
		{"unknown target", MatchNovo, MatchStatus("arquivado"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestMatchStatus_Terminal(t *testing.T) {
	t.Parallel()
	assert.True(t, MatchDescartado.Terminal())
	assert.True(t, MatchCandidaturaCriada.Terminal())
	assert.False(t, MatchNovo.Terminal())
	assert.False(t, MatchSelecionado.Terminal())
}
