// Package priority computes deterministic vaga priority scores. It is the
// fallback path used when the generative model is unconfigured or
// unreachable, and never performs I/O of its own.
package priority

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// Tier labels and the SLA suggested for each.
const (
	TierAlta  = "Alta"
	TierMedia = "Média"
	TierBaixa = "Baixa"

	slaAltaDias  = 5
	slaMediaDias = 10
	slaBaixaDias = 20
)

// Weights configures the contribution of each factor, in percent. The four
// weights are expected to sum to 100; the scorer does not normalize them.
type Weights struct {
	Urgencia    float64 `yaml:"urgencia"`
	Faturamento float64 `yaml:"faturamento"`
	TempoAberto float64 `yaml:"tempo_aberto"`
	Completude  float64 `yaml:"completude"`
	BonusVIP    float64 `yaml:"bonus_vip"`
}

// DefaultWeights is the documented default configuration: an even 25/25/25/25
// split plus a flat +20 bonus for VIP clients.
func DefaultWeights() Weights {
	return Weights{
		Urgencia:    25,
		Faturamento: 25,
		TempoAberto: 25,
		Completude:  25,
		BonusVIP:    20,
	}
}

// LoadWeights reads a Weights YAML file. An empty path returns the defaults.
func LoadWeights(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("op=priority.LoadWeights: %w", err)
	}
	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("op=priority.LoadWeights: %w", err)
	}
	return w, nil
}

// Score computes the priority of v at the reference instant now. Same vaga,
// weights and instant always produce the same result.
func Score(v domain.Vaga, w Weights, now time.Time) domain.JobPriorityScore {
	factors := domain.PriorityFactors{
		Urgencia:    urgencyFactor(v.DataLimite, now),
		Faturamento: billingFactor(v.FaturamentoEstimado),
		TempoAberto: daysOpenFactor(v.AbertaEm, now),
		Completude:  completenessFactor(v),
	}

	base := factors.Urgencia*w.Urgencia/100 +
		factors.Faturamento*w.Faturamento/100 +
		factors.TempoAberto*w.TempoAberto/100 +
		factors.Completude*w.Completude/100

	base *= urgencyMultiplier(factors.Urgencia)
	base = math.Min(base, 100)

	if v.ClienteVIP {
		factors.BonusVIP = w.BonusVIP
		base += w.BonusVIP
	}

	score := math.Round(base*10) / 10
	tier := TierFor(score)

	return domain.JobPriorityScore{
		VagaID:     v.ID,
		Score:      score,
		Tier:       tier,
		SLADias:    SLAFor(tier),
		Fatores:    factors,
		Fonte:      domain.PriorityFonteHeuristica,
		ComputedAt: now,
	}
}

// TierFor maps a score onto a tier. Boundaries are inclusive on the lower
// edge: 80 is Alta, 50 is Média.
func TierFor(score float64) string {
	switch {
	case score >= 80:
		return TierAlta
	case score >= 50:
		return TierMedia
	default:
		return TierBaixa
	}
}

// SLAFor returns the suggested days-to-close for a tier.
func SLAFor(tier string) int {
	switch tier {
	case TierAlta:
		return slaAltaDias
	case TierMedia:
		return slaMediaDias
	default:
		return slaBaixaDias
	}
}

// urgencyFactor scores the deadline pressure. An overdue deadline is maximum
// urgency; no deadline is neutral.
func urgencyFactor(dataLimite *time.Time, now time.Time) float64 {
	if dataLimite == nil {
		return 50
	}
	dias := int(math.Ceil(dataLimite.Sub(now).Hours() / 24))
	switch {
	case dias <= 0:
		return 100
	case dias <= 3:
		return 90
	case dias <= 7:
		return 75
	case dias <= 15:
		return 55
	default:
		return 30
	}
}

func billingFactor(faturamento float64) float64 {
	switch {
	case faturamento >= 50000:
		return 100
	case faturamento >= 30000:
		return 80
	case faturamento >= 15000:
		return 60
	case faturamento >= 5000:
		return 40
	case faturamento > 0:
		return 20
	default:
		return 0
	}
}

func daysOpenFactor(abertaEm, now time.Time) float64 {
	if abertaEm.IsZero() {
		return 0
	}
	dias := int(now.Sub(abertaEm).Hours() / 24)
	switch {
	case dias >= 30:
		return 100
	case dias >= 20:
		return 80
	case dias >= 10:
		return 60
	case dias >= 5:
		return 40
	case dias >= 1:
		return 20
	default:
		return 0
	}
}

// completenessFactor rewards vagas with fully filled-out records, since
// incomplete requisitions stall the matching pipeline.
func completenessFactor(v domain.Vaga) float64 {
	total := 6.0
	filled := 0.0
	if v.Titulo != "" {
		filled++
	}
	if v.Cliente != "" {
		filled++
	}
	if v.Senioridade != "" {
		filled++
	}
	if len(v.StackRequerida) > 0 {
		filled++
	}
	if v.FaturamentoEstimado > 0 {
		filled++
	}
	if v.DataLimite != nil {
		filled++
	}
	return math.Round(filled / total * 100)
}

// urgencyMultiplier amplifies or dampens the weighted base depending on how
// pressing the deadline is.
func urgencyMultiplier(urgencia float64) float64 {
	switch {
	case urgencia >= 90:
		return 1.5
	case urgencia >= 50:
		return 1.0
	default:
		return 0.8
	}
}
