package priority

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

var refNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func Test_Score_Deterministic(t *testing.T) {
	limite := refNow.Add(5 * 24 * time.Hour)
	v := domain.Vaga{
		ID:                  "vaga-1",
		Titulo:              "Dev Go",
		Cliente:             "Banco Alfa",
		ClienteVIP:          true,
		Senioridade:         "senior",
		StackRequerida:      []string{"Go"},
		FaturamentoEstimado: 32000,
		DataLimite:          &limite,
		AbertaEm:            refNow.Add(-12 * 24 * time.Hour),
	}
	w := DefaultWeights()

	a := Score(v, w, refNow)
	b := Score(v, w, refNow)

	assert.Equal(t, a, b)
	assert.Equal(t, domain.PriorityFonteHeuristica, a.Fonte)
}

func Test_Score_OverdueDeadlineAndVIPBonus(t *testing.T) {
	limite := refNow.Add(-3 * 24 * time.Hour)
	v := domain.Vaga{
		ID:         "vaga-2",
		ClienteVIP: true,
		DataLimite: &limite,
		AbertaEm:   refNow,
	}
	w := DefaultWeights()

	got := Score(v, w, refNow)
	assert.Equal(t, float64(100), got.Fatores.Urgencia, "overdue deadline is maximum urgency")
	assert.Equal(t, float64(20), got.Fatores.BonusVIP)

	v.ClienteVIP = false
	semVIP := Score(v, w, refNow)
	assert.InDelta(t, 20, got.Score-semVIP.Score, 0.001, "VIP adds a flat +20 to the final score")
	assert.Zero(t, semVIP.Fatores.BonusVIP)
}

func Test_TierFor_Boundaries(t *testing.T) {
	assert.Equal(t, TierMedia, TierFor(79))
	assert.Equal(t, TierAlta, TierFor(80))
	assert.Equal(t, TierBaixa, TierFor(49))
	assert.Equal(t, TierMedia, TierFor(50))
}

func Test_Score_SLAPerTier(t *testing.T) {
	assert.Equal(t, slaAltaDias, SLAFor(TierAlta))
	assert.Equal(t, slaMediaDias, SLAFor(TierMedia))
	assert.Equal(t, slaBaixaDias, SLAFor(TierBaixa))
}

func Test_Score_CapsBaseBeforeVIP(t *testing.T) {
	limite := refNow.Add(-1 * 24 * time.Hour)
	v := domain.Vaga{
		ID:                  "vaga-3",
		Titulo:              "Dev",
		Cliente:             "Acme",
		ClienteVIP:          true,
		Senioridade:         "pleno",
		StackRequerida:      []string{"Go"},
		FaturamentoEstimado: 60000,
		DataLimite:          &limite,
		AbertaEm:            refNow.Add(-45 * 24 * time.Hour),
	}

	got := Score(v, DefaultWeights(), refNow)
	assert.LessOrEqual(t, got.Score, float64(120))
	assert.Equal(t, float64(120), got.Score, "all factors maxed: base caps at 100 and VIP adds 20")
	assert.Equal(t, TierAlta, got.Tier)
}

func Test_Score_NoDeadlineIsNeutralUrgency(t *testing.T) {
	v := domain.Vaga{ID: "vaga-4", AbertaEm: refNow}

	got := Score(v, DefaultWeights(), refNow)
	assert.Equal(t, float64(50), got.Fatores.Urgencia)
}

func Test_LoadWeights(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		w, err := LoadWeights("")
		require.NoError(t, err)
		assert.Equal(t, DefaultWeights(), w)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("urgencia: 40\nfaturamento: 30\ntempo_aberto: 20\ncompletude: 10\nbonus_vip: 15\n"), 0o600))

		w, err := LoadWeights(path)
		require.NoError(t, err)
		assert.Equal(t, Weights{Urgencia: 40, Faturamento: 30, TempoAberto: 20, Completude: 10, BonusVIP: 15}, w)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadWeights("/nonexistent/weights.yaml")
		assert.Error(t, err)
	})
}
