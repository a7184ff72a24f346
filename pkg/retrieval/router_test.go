package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/llm"
	"docai-platform-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
)

type fakeRouterProvider struct {
	response string
	err      error
}

func (p *fakeRouterProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return p.response, p.err
}

func (p *fakeRouterProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return p.response, p.err
}

func TestRouterClassifiesModes(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     retrieval.Mode
		hints    []string
	}{
		{
			name:     "comparison",
			response: `{"mode": "comparison", "version_hints": ["v1.0", "v2.0"], "reason": "asks what changed"}`,
			want:     retrieval.ModeComparison,
			hints:    []string{"v1.0", "v2.0"},
		},
		{
			name:     "history",
			response: `{"mode": "history", "version_hints": ["previous"], "reason": "asks about the past"}`,
			want:     retrieval.ModeHistory,
			hints:    []string{"previous"},
		},
		{
			name:     "default",
			response: `{"mode": "default", "version_hints": [], "reason": "current facts"}`,
			want:     retrieval.ModeDefault,
		},
		{
			name:     "unknown mode falls back to default",
			response: `{"mode": "everything", "version_hints": [], "reason": "confused"}`,
			want:     retrieval.ModeDefault,
		},
		{
			name:     "fenced reply is tolerated",
			response: "```json\n{\"mode\": \"history\", \"version_hints\": [], \"reason\": \"evolution\"}\n```",
			want:     retrieval.ModeHistory,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := retrieval.NewRouter(&fakeRouterProvider{response: tc.response}, 0, logger.NewNopLogger())
			plan := router.Route(context.Background(), "some question")
			assert.Equal(t, tc.want, plan.Mode)
			if tc.hints != nil {
				assert.Equal(t, tc.hints, plan.VersionHints)
			}
		})
	}
}

func TestRouterFallsBackOnFailure(t *testing.T) {
	cases := []struct {
		name     string
		provider llm.LLMProvider
	}{
		{"nil provider", nil},
		{"provider error", &fakeRouterProvider{err: errors.New("model unavailable")}},
		{"unparseable reply", &fakeRouterProvider{response: "no json here"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := retrieval.NewRouter(tc.provider, 0, logger.NewNopLogger())
			plan := router.Route(context.Background(), "what is the policy?")
			assert.Equal(t, retrieval.ModeDefault, plan.Mode)
			assert.Equal(t, "fallback", plan.Reason)
		})
	}
}
