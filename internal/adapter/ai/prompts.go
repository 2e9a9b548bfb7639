// Package ai contains the prompt builders, the JSON response extractor and
// the result validators that sit around the generative model gateway.
package ai

import (
	"fmt"
	"strings"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// CVPromptBudget is the fixed character budget applied to CV text before it
// is interpolated into a prompt. Activity reports are never truncated.
const CVPromptBudget = 6000

// TruncateForPrompt cuts s to the CV prompt budget. Callers apply this to CV
// text only; report text goes through untouched.
func TruncateForPrompt(s string) string {
	if len(s) <= CVPromptBudget {
		return s
	}
	return s[:CVPromptBudget]
}

// BuildRiskPrompt assembles the consultant risk analysis prompt: role
// statement, the 1-5 taxonomy with keyword hints, the output JSON skeleton
// and the raw report interpolated at the end. Pure string assembly, no I/O.
func BuildRiskPrompt(reportText, gestorNome string, mes int) string {
	var sb strings.Builder
	sb.WriteString("Você é um analista de RH especializado em retenção de consultores alocados em clientes.\n")
	sb.WriteString("Analise o relatório de atividades abaixo. Cada consultor aparece em um segmento iniciado por '◆ Nome | Cliente'.\n\n")
	sb.WriteString("Escala de risco de saída (riskScore):\n")
	sb.WriteString("1 = Excelente: motivado, entregas em dia, cliente satisfeito\n")
	sb.WriteString("2 = Bom: estável, pequenos pontos de atenção\n")
	sb.WriteString("3 = Atenção: desmotivação pontual, atritos, atrasos recorrentes\n")
	sb.WriteString("4 = Alto: insatisfação clara, conflito com gestor/cliente, busca ativa por recolocação\n")
	sb.WriteString("5 = Crítico: saída iminente, pedido de desligamento, proposta externa aceita\n\n")
	sb.WriteString("Palavras-chave de alerta: desmotivado, atrito, atraso, proposta, desligamento, insatisfeito, conflito.\n\n")
	sb.WriteString("Responda APENAS com JSON neste formato exato:\n")
	sb.WriteString(`{"results":[{"consultantName":"...","clientName":"...","riskScore":1,"summary":"...","negativePatterns":"...","predictiveAlerts":"...","recommendations":"...","fullDetail":"..."}]}`)
	sb.WriteString("\n\nUse \"Nenhum\" em negativePatterns e predictiveAlerts quando não houver sinais.\n\n")
	if gestorNome != "" {
		sb.WriteString(fmt.Sprintf("Gestor responsável: %s\n", gestorNome))
	}
	if mes >= 1 && mes <= 12 {
		sb.WriteString(fmt.Sprintf("Mês de referência: %d\n", mes))
	}
	sb.WriteString("\nRelatório:\n")
	sb.WriteString(reportText)
	return sb.String()
}

// BuildMatchPrompt assembles the candidate-vs-vaga compatibility prompt.
// The caller is responsible for truncating cvText to the prompt budget.
func BuildMatchPrompt(v domain.Vaga, cvText string) string {
	var sb strings.Builder
	sb.WriteString("Você é um especialista em recrutamento de TI.\n")
	sb.WriteString("Avalie a compatibilidade entre o candidato e a vaga abaixo.\n\n")
	sb.WriteString(fmt.Sprintf("Vaga: %s\nCliente: %s\nSenioridade: %s\nStack requerida: %s\n\n",
		v.Titulo, v.Cliente, v.Senioridade, strings.Join(v.StackRequerida, ", ")))
	sb.WriteString("Responda APENAS com JSON neste formato exato:\n")
	sb.WriteString(`{"compatibilityScore":0,"matchedSkills":[],"missingSkills":[],"observacoes":"..."}`)
	sb.WriteString("\n\ncompatibilityScore é um inteiro de 0 a 100.\n\n")
	sb.WriteString("CV do candidato:\n")
	sb.WriteString(cvText)
	return sb.String()
}

// BuildCVProfilePrompt assembles the CV parsing prompt used on upload.
// The caller is responsible for truncating cvText to the prompt budget.
func BuildCVProfilePrompt(cvText string) string {
	var sb strings.Builder
	sb.WriteString("Você é um parser de currículos de profissionais de TI.\n")
	sb.WriteString("Extraia os dados do CV abaixo. Copie os termos do texto, não invente.\n\n")
	sb.WriteString("Responda APENAS com JSON neste formato exato:\n")
	sb.WriteString(`{"skills":[],"experiencias":[],"formacao":[],"idiomas":[],"senioridade_detectada":"pleno","resumo":"..."}`)
	sb.WriteString("\n\nsenioridade_detectada deve ser uma de: junior, pleno, senior, especialista.\n\n")
	sb.WriteString("CV:\n")
	sb.WriteString(cvText)
	return sb.String()
}

// BuildPriorityPrompt assembles the vaga priority scoring prompt used by the
// AI path; the deterministic scorer substitutes when the provider is
// unavailable.
func BuildPriorityPrompt(v domain.Vaga, diasAteLimite *int, diasAberta int) string {
	var sb strings.Builder
	sb.WriteString("Você é um coordenador de recrutamento priorizando vagas abertas.\n")
	sb.WriteString(fmt.Sprintf("Vaga: %s\nCliente: %s (VIP: %t)\nFaturamento estimado mensal: R$ %.2f\nDias em aberto: %d\n",
		v.Titulo, v.Cliente, v.ClienteVIP, v.FaturamentoEstimado, diasAberta))
	if diasAteLimite != nil {
		sb.WriteString(fmt.Sprintf("Dias até a data limite: %d\n", *diasAteLimite))
	}
	sb.WriteString(fmt.Sprintf("Stack requerida: %s\n\n", strings.Join(v.StackRequerida, ", ")))
	sb.WriteString("Atribua uma pontuação de prioridade de 0 a 120 (acima de 100 apenas para clientes VIP).\n")
	sb.WriteString("Responda APENAS com JSON neste formato exato:\n")
	sb.WriteString(`{"score":0,"justificativa":"..."}`)
	return sb.String()
}
