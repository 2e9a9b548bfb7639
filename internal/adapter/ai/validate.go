package ai

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// Defaults backfilled for optional fields. The upstream model's JSON is not
// schema-enforced on every call site, so this layer absorbs missing fields
// instead of letting them propagate.
const (
	DefaultSenioridade = "pleno"
	DefaultResumo      = "Perfil profissional importado do currículo."
	DefaultSemSinal    = "Nenhum"
)

// MatchResult is the validated output of the candidate matching pipeline.
type MatchResult struct {
	Score             int
	SkillsCompativeis []string
	SkillsFaltantes   []string
	Observacoes       string
}

// ValidateRiskResults decodes the extracted JSON of a report analysis and
// returns one assessment per consultant. The risk score is the decision
// field: missing, non-numeric or out of [1,5] fails the whole pipeline
// rather than producing a zero-value row.
func ValidateRiskResults(rawJSON, gestorNome string, mes int) ([]domain.RiskAssessment, error) {
	results := gjson.Get(rawJSON, "results")
	if !results.Exists() || !results.IsArray() {
		return nil, fmt.Errorf("%w: results array missing", domain.ErrValidation)
	}

	var payload struct {
		Results []struct {
			ConsultantName    string      `json:"consultantName"`
			ClientName        string      `json:"clientName"`
			RiskScore         json.Number `json:"riskScore"`
			Summary           string      `json:"summary"`
			NegativePatterns  string      `json:"negativePatterns"`
			PredictiveAlerts  string      `json:"predictiveAlerts"`
			Recommendations   string      `json:"recommendations"`
			FullDetail        string      `json:"fullDetail"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: results array empty", domain.ErrValidation)
	}

	out := make([]domain.RiskAssessment, 0, len(payload.Results))
	for i, r := range payload.Results {
		if r.ConsultantName == "" {
			return nil, fmt.Errorf("%w: results[%d].consultantName missing", domain.ErrValidation, i)
		}
		score, err := coerceScore(r.RiskScore)
		if err != nil {
			return nil, fmt.Errorf("%w: results[%d].riskScore: %v", domain.ErrValidation, i, err)
		}
		if score < domain.RiskScoreMin || score > domain.RiskScoreMax {
			return nil, fmt.Errorf("%w: results[%d].riskScore %d out of range [1,5]", domain.ErrValidation, i, score)
		}
		a := domain.RiskAssessment{
			ConsultantNome:    r.ConsultantName,
			ClienteNome:       r.ClientName,
			GestorNome:        gestorNome,
			Mes:               mes,
			Score:             score,
			Resumo:            r.Summary,
			PadroesNegativos:  withDefault(r.NegativePatterns, DefaultSemSinal),
			AlertasPreditivos: withDefault(r.PredictiveAlerts, DefaultSemSinal),
			Recomendacoes:     r.Recommendations,
			Detalhe:           r.FullDetail,
		}
		out = append(out, a)
	}
	return out, nil
}

// ValidateMatch decodes the extracted JSON of a candidate match. The
// compatibility score is the decision field.
func ValidateMatch(rawJSON string) (MatchResult, error) {
	scoreField := gjson.Get(rawJSON, "compatibilityScore")
	if !scoreField.Exists() {
		return MatchResult{}, fmt.Errorf("%w: compatibilityScore missing", domain.ErrValidation)
	}
	if scoreField.Type != gjson.Number {
		return MatchResult{}, fmt.Errorf("%w: compatibilityScore not numeric", domain.ErrValidation)
	}
	score := int(math.Round(scoreField.Float()))
	if score < 0 || score > 100 {
		return MatchResult{}, fmt.Errorf("%w: compatibilityScore %d out of range [0,100]", domain.ErrValidation, score)
	}

	var payload struct {
		MatchedSkills []string `json:"matchedSkills"`
		MissingSkills []string `json:"missingSkills"`
		Observacoes   string   `json:"observacoes"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &payload); err != nil {
		return MatchResult{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return MatchResult{
		Score:             score,
		SkillsCompativeis: emptyIfNil(payload.MatchedSkills),
		SkillsFaltantes:   emptyIfNil(payload.MissingSkills),
		Observacoes:       payload.Observacoes,
	}, nil
}

// ValidateCVProfile decodes the extracted JSON of a CV parse and returns a
// fully defaulted profile: list fields default to empty slices, seniority to
// the neutral mid-range label and the summary to a boilerplate sentence.
func ValidateCVProfile(rawJSON string) (domain.CVProfile, error) {
	if !gjson.Valid(rawJSON) || !gjson.Parse(rawJSON).IsObject() {
		return domain.CVProfile{}, fmt.Errorf("%w: profile is not a JSON object", domain.ErrValidation)
	}
	var payload struct {
		Skills       []string `json:"skills"`
		Experiencias []string `json:"experiencias"`
		Formacao     []string `json:"formacao"`
		Idiomas      []string `json:"idiomas"`
		Senioridade  string   `json:"senioridade_detectada"`
		Resumo       string   `json:"resumo"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &payload); err != nil {
		return domain.CVProfile{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return domain.CVProfile{
		Skills:       emptyIfNil(payload.Skills),
		Experiencias: emptyIfNil(payload.Experiencias),
		Formacao:     emptyIfNil(payload.Formacao),
		Idiomas:      emptyIfNil(payload.Idiomas),
		Senioridade:  withDefault(payload.Senioridade, DefaultSenioridade),
		Resumo:       withDefault(payload.Resumo, DefaultResumo),
	}, nil
}

// ValidatePriorityScore decodes the extracted JSON of an AI priority
// assessment and returns the bounded score.
func ValidatePriorityScore(rawJSON string) (float64, error) {
	scoreField := gjson.Get(rawJSON, "score")
	if !scoreField.Exists() || scoreField.Type != gjson.Number {
		return 0, fmt.Errorf("%w: score missing or not numeric", domain.ErrValidation)
	}
	score := scoreField.Float()
	if score < 0 || score > 120 {
		return 0, fmt.Errorf("%w: score %.1f out of range [0,120]", domain.ErrValidation, score)
	}
	return score, nil
}

func coerceScore(n json.Number) (int, error) {
	if n.String() == "" {
		return 0, fmt.Errorf("missing")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
