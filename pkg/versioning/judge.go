package versioning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/llm"

	"github.com/google/uuid"
)

// AutoLinkThreshold is the minimum judgment confidence for acting on a
// verdict. Below it the upload is treated as unrelated: recall is
// traded for safety against silently merging distinct documents.
const AutoLinkThreshold = 0.8

// Judge delegates same-document judgment to the LLM capability and
// applies the acceptance rule.
type Judge struct {
	provider llm.LLMProvider
	timeout  time.Duration
	log      logger.ILogger
}

func NewJudge(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Judge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Judge{
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

type judgeReply struct {
	IsNewVersion    bool    `json:"is_new_version"`
	MatchedDocId    string  `json:"matched_doc_id"`
	Confidence      float64 `json:"confidence"`
	Reason          string  `json:"reason"`
	NewIsNewer      *bool   `json:"new_is_newer"`
	DetectedVersion string  `json:"detected_version"`
}

// Judge returns ErrDetectionInconclusive both for "not the same
// document" and for a confidence below the threshold: a normal outcome,
// the caller registers the upload standalone. A capability failure
// returns *ExternalCapabilityTimeout so the caller can flag manual
// review; it is never an implicit accept or reject.
func (j *Judge) Judge(ctx context.Context, newDoc NewDocument, candidates []CandidateMatch) (*Verdict, error) {
	if len(candidates) == 0 {
		return nil, ErrDetectionInconclusive
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	prompt := j.buildPrompt(newDoc, candidates)
	raw, err := j.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, &ExternalCapabilityTimeout{Capability: "version-judgment", Err: err}
	}

	var reply judgeReply
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reply); err != nil {
		return nil, &ExternalCapabilityTimeout{Capability: "version-judgment", Err: fmt.Errorf("malformed verdict: %w", err)}
	}

	if !reply.IsNewVersion {
		return nil, ErrDetectionInconclusive
	}

	matchedId, ok := resolveCandidateId(reply.MatchedDocId, candidates)
	if !ok {
		j.log.Warn("versioning", "Judge verdict referenced unknown candidate", map[string]interface{}{
			"document_id": newDoc.Id,
			"matched_id":  reply.MatchedDocId,
		})
		return nil, ErrDetectionInconclusive
	}

	if reply.Confidence < AutoLinkThreshold {
		j.log.Info("versioning", "Verdict below confidence threshold, treating as unrelated", map[string]interface{}{
			"document_id": newDoc.Id,
			"matched_id":  matchedId,
			"confidence":  reply.Confidence,
		})
		return nil, ErrDetectionInconclusive
	}

	// Unknown recency defaults to "uploaded is newer", matching the
	// common upload order.
	newIsNewer := true
	if reply.NewIsNewer != nil {
		newIsNewer = *reply.NewIsNewer
	}

	return &Verdict{
		IsSameDocument:       true,
		MatchedCandidateId:   matchedId,
		Confidence:           reply.Confidence,
		Reason:               reply.Reason,
		NewIsNewer:           newIsNewer,
		DetectedVersionLabel: reply.DetectedVersion,
	}, nil
}

func (j *Judge) buildPrompt(newDoc NewDocument, candidates []CandidateMatch) string {
	var b strings.Builder
	b.WriteString("You are a document version detection assistant. Decide whether the newly uploaded document is a revision of one of the candidate documents.\n\n")
	fmt.Fprintf(&b, "New document title: %q\n", newDoc.Title)
	fmt.Fprintf(&b, "New document summary: %s\n\n", truncate(newDoc.Summary, 500))

	b.WriteString("Candidate documents (retrieved by title and content similarity):\n")
	for _, c := range candidates {
		label := c.VersionLabel
		if label == "" {
			label = "unknown"
		}
		fmt.Fprintf(&b, "- [%s] title: %q version: %s match: %s score: %.2f summary: %s\n",
			c.CandidateId, c.Title, label, c.MatchSource, c.RawScore, truncate(c.Summary, 150))
	}

	b.WriteString(`
Rules:
1. Same core title (version suffixes and dates may differ) with the same subject matter usually means a new version.
2. Similar titles with different subject matter are NOT versions of each other.
3. Distinguish "different versions of one document" from "different documents of the same kind".
4. If they are versions of one document, decide which is newer using version labels, dates, and scope of content.

Return ONLY a JSON object:
{
  "is_new_version": true/false,
  "matched_doc_id": "full candidate id, or null",
  "confidence": 0.0-1.0,
  "reason": "short justification",
  "new_is_newer": true/false,
  "detected_version": "version label extracted from the new document, or null"
}
`)
	return b.String()
}

// resolveCandidateId repairs ids the model truncated by matching them
// as a prefix against the candidate set.
func resolveCandidateId(raw string, candidates []CandidateMatch) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return uuid.Nil, false
	}
	if id, err := uuid.Parse(raw); err == nil {
		for _, c := range candidates {
			if c.CandidateId == id {
				return id, true
			}
		}
		return uuid.Nil, false
	}
	for _, c := range candidates {
		if strings.HasPrefix(c.CandidateId.String(), raw) {
			return c.CandidateId, true
		}
	}
	return uuid.Nil, false
}

// extractJSON isolates the JSON object from a chatty model reply.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}
	return response[startIdx : endIdx+1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Never cut a multi-byte rune in half.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
