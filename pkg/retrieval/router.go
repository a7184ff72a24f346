package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/llm"
)

// QueryPlan is the router's reading of a natural-language question.
type QueryPlan struct {
	Mode Mode
	// VersionHints are version labels or ordinals the question named,
	// e.g. "v2.0" or "previous". Empty for default mode.
	VersionHints []string
	Reason       string
}

// Router classifies a question into a retrieval mode. Classification is
// best effort: any model failure falls back to default mode, which is
// always safe because it only ever exposes the head.
type Router struct {
	provider llm.LLMProvider
	timeout  time.Duration
	log      logger.ILogger
}

func NewRouter(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Router {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Router{provider: provider, timeout: timeout, log: log}
}

type routerReply struct {
	Mode         string   `json:"mode"`
	VersionHints []string `json:"version_hints"`
	Reason       string   `json:"reason"`
}

func (r *Router) Route(ctx context.Context, query string) *QueryPlan {
	fallback := &QueryPlan{Mode: ModeDefault, Reason: "fallback"}
	if r.provider == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.provider.Generate(ctx, r.buildPrompt(query), llm.WithTemperature(0))
	if err != nil {
		r.log.Warn("retrieval", "Query routing failed, defaulting to latest-only", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback
	}

	var reply routerReply
	if err := json.Unmarshal([]byte(jsonBlock(response)), &reply); err != nil {
		r.log.Warn("retrieval", "Query routing returned unparseable output", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback
	}

	plan := &QueryPlan{VersionHints: reply.VersionHints, Reason: reply.Reason}
	switch strings.ToLower(strings.TrimSpace(reply.Mode)) {
	case string(ModeComparison):
		plan.Mode = ModeComparison
	case string(ModeHistory):
		plan.Mode = ModeHistory
	default:
		plan.Mode = ModeDefault
	}
	return plan
}

func (r *Router) buildPrompt(query string) string {
	return fmt.Sprintf(`Classify the retrieval intent of a question about enterprise documents.

Modes:
- "default": the user wants current facts. Most questions.
- "comparison": the user asks what changed between two versions.
- "history": the user asks about the evolution or past state of a document.

Question: %q

Respond with ONLY a JSON object:
{"mode": "default|comparison|history", "version_hints": ["<labels or ordinals mentioned>"], "reason": "<one sentence>"}`, query)
}

func jsonBlock(response string) string {
	response = strings.TrimSpace(response)
	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}"); end > start {
			return response[start : end+1]
		}
	}
	return response
}
