package diff

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/llm"
	"docai-platform-be/pkg/versioning"
)

// Prompt bounds keep the analysis request inside a sane context window.
const (
	maxPromptSections = 10
	maxPromptLabels   = 10
	maxExcerptChars   = 400
)

// SemanticAnalyzer asks the analysis model to interpret the mechanical
// diff layers. Its output is advisory and never gates linkage.
type SemanticAnalyzer struct {
	provider llm.LLMProvider
	timeout  time.Duration
	log      logger.ILogger
}

func NewSemanticAnalyzer(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *SemanticAnalyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SemanticAnalyzer{provider: provider, timeout: timeout, log: log}
}

type semanticReply struct {
	ChangeSummary string `json:"change_summary"`
	ChangeDetails []struct {
		Category       string `json:"category"`
		Description    string `json:"description"`
		Location       string `json:"location"`
		BusinessImpact string `json:"business_impact"`
	} `json:"change_details"`
	RiskFlags      []string `json:"risk_flags"`
	ImpactAnalysis string   `json:"impact_analysis"`
}

// Analyze builds a bounded prompt from the lower layers and parses the
// model's JSON reply. Failures come back as *ExternalCapabilityTimeout;
// the engine stores a partial record and retries on the next request.
func (a *SemanticAnalyzer) Analyze(ctx context.Context, oldDoc, newDoc *entity.Document, text *entity.TextDiff, structural *entity.StructuralDiff) (*entity.SemanticDiff, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := a.buildPrompt(oldDoc, newDoc, text, structural)
	response, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, &versioning.ExternalCapabilityTimeout{Capability: "semantic-analysis", Err: err}
	}

	var reply semanticReply
	if err := json.Unmarshal([]byte(jsonBlock(response)), &reply); err != nil {
		a.log.Warn("diff", "Semantic analysis returned unparseable output", map[string]interface{}{
			"error":    err.Error(),
			"response": truncateText(response, 200),
		})
		return nil, &versioning.ExternalCapabilityTimeout{
			Capability: "semantic-analysis",
			Err:        fmt.Errorf("malformed analysis reply: %w", err),
		}
	}

	out := &entity.SemanticDiff{
		ChangeSummary:  reply.ChangeSummary,
		RiskFlags:      reply.RiskFlags,
		ImpactAnalysis: reply.ImpactAnalysis,
	}
	for _, d := range reply.ChangeDetails {
		out.ChangeDetails = append(out.ChangeDetails, entity.ChangeDetail{
			Category:       normalizeCategory(d.Category),
			Description:    d.Description,
			Location:       d.Location,
			BusinessImpact: d.BusinessImpact,
		})
	}
	return out, nil
}

func (a *SemanticAnalyzer) buildPrompt(oldDoc, newDoc *entity.Document, text *entity.TextDiff, structural *entity.StructuralDiff) string {
	var b strings.Builder
	b.WriteString("You are a document change analyst. Two versions of the same document are compared below.\n\n")
	fmt.Fprintf(&b, "Old version: %q (%s)\nNew version: %q (%s)\n\n",
		oldDoc.Title, oldDoc.VersionLabel, newDoc.Title, newDoc.VersionLabel)

	if len(structural.AddedSections) > 0 {
		fmt.Fprintf(&b, "Added sections: %s\n", strings.Join(capLabels(structural.AddedSections), "; "))
	}
	if len(structural.DeletedSections) > 0 {
		fmt.Fprintf(&b, "Deleted sections: %s\n", strings.Join(capLabels(structural.DeletedSections), "; "))
	}
	for _, r := range structural.RenamedSections {
		fmt.Fprintf(&b, "Renamed section: %q -> %q\n", r.OldName, r.NewName)
	}

	listed := 0
	for _, sec := range text.Sections {
		if sec.Status != entity.SectionModified || listed >= maxPromptSections {
			continue
		}
		listed++
		fmt.Fprintf(&b, "\nModified section %q:\n", sec.SectionPath)
		for _, span := range sec.Changes {
			if span.OldText != "" {
				fmt.Fprintf(&b, "  was: %s\n", truncateText(span.OldText, maxExcerptChars))
			}
			if span.NewText != "" {
				fmt.Fprintf(&b, "  now: %s\n", truncateText(span.NewText, maxExcerptChars))
			}
		}
	}

	b.WriteString(`
Respond with ONLY a JSON object:
{
  "change_summary": "<one paragraph>",
  "change_details": [
    {"category": "substantive|wording|formatting|addition|deletion", "description": "...", "location": "<section>", "business_impact": "..."}
  ],
  "risk_flags": ["..."],
  "impact_analysis": "<one paragraph>"
}
`)
	return b.String()
}

func capLabels(labels []string) []string {
	if len(labels) > maxPromptLabels {
		return labels[:maxPromptLabels]
	}
	return labels
}

func normalizeCategory(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case entity.CategorySubstantive, entity.CategoryWording, entity.CategoryFormatting,
		entity.CategoryAddition, entity.CategoryDeletion:
		return strings.ToLower(strings.TrimSpace(raw))
	default:
		return entity.CategoryWording
	}
}

// jsonBlock strips markdown fences and surrounding prose from a model
// reply, keeping the outermost JSON object.
func jsonBlock(response string) string {
	response = strings.TrimSpace(response)
	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}"); end > start {
			return response[start : end+1]
		}
	}
	return response
}
