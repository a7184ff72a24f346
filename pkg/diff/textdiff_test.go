package diff

import (
	"strings"
	"testing"
	"unicode/utf8"

	"docai-platform-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestCompareTextCountsAllStatuses(t *testing.T) {
	oldSections := []Section{
		{Path: "intro", Content: "Welcome to the handbook."},
		{Path: "leave", Content: "Employees accrue 15 days of leave.\n\nUnused days carry over."},
		{Path: "legacy", Content: "This section is going away."},
	}
	newSections := []Section{
		{Path: "intro", Content: "Welcome to the handbook."},
		{Path: "leave", Content: "Employees accrue 20 days of leave.\n\nUnused days carry over."},
		{Path: "remote", Content: "Remote work is allowed two days per week."},
	}

	out := CompareText(oldSections, newSections)

	assert.Equal(t, 1, out.Stats.Unchanged)
	assert.Equal(t, 1, out.Stats.Modified)
	assert.Equal(t, 1, out.Stats.Deleted)
	assert.Equal(t, 1, out.Stats.Added)

	byPath := make(map[string]entity.SectionDiff)
	for _, sec := range out.Sections {
		byPath[sec.SectionPath] = sec
	}

	// Unchanged sections are not materialized.
	assert.NotContains(t, byPath, "intro")

	assert.Equal(t, entity.SectionDeleted, byPath["legacy"].Status)
	assert.Equal(t, "This section is going away.", byPath["legacy"].OldText)

	assert.Equal(t, entity.SectionAdded, byPath["remote"].Status)
	assert.Equal(t, "Remote work is allowed two days per week.", byPath["remote"].NewText)

	modified := byPath["leave"]
	assert.Equal(t, entity.SectionModified, modified.Status)
	assert.Len(t, modified.Changes, 1)
	assert.Equal(t, entity.ChangeReplace, modified.Changes[0].Type)
	assert.Contains(t, modified.Changes[0].OldText, "15 days")
	assert.Contains(t, modified.Changes[0].NewText, "20 days")
	assert.Contains(t, modified.DiffPreview, "--- old")
	assert.Contains(t, modified.DiffPreview, "+++ new")
}

func TestCompareTextParagraphOps(t *testing.T) {
	oldContent := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	newContent := "First paragraph.\n\nBrand new paragraph.\n\nSecond paragraph."

	out := CompareText(
		[]Section{{Path: "body", Content: oldContent}},
		[]Section{{Path: "body", Content: newContent}},
	)

	assert.Equal(t, 1, out.Stats.Modified)
	spans := out.Sections[0].Changes
	assert.NotEmpty(t, spans)
	types := make(map[string]int)
	for _, span := range spans {
		types[span.Type]++
	}
	// "Third paragraph." disappears and "Brand new paragraph." appears;
	// the matcher reports them as non-equal opcodes in some shape.
	assert.NotZero(t, types[entity.ChangeInsert]+types[entity.ChangeReplace])
	assert.NotZero(t, types[entity.ChangeDelete]+types[entity.ChangeReplace])
}

func TestCompareTextCapsSpansAndLength(t *testing.T) {
	var oldParts, newParts []string
	for i := 0; i < 100; i++ {
		oldParts = append(oldParts, strings.Repeat("a", 20))
		newParts = append(newParts, strings.Repeat("b", 20))
	}
	longOld := strings.Repeat("x", 2*maxSpanChars)

	out := CompareText(
		[]Section{
			{Path: "noisy", Content: strings.Join(oldParts, "\n\n")},
			{Path: "gone", Content: longOld},
		},
		[]Section{
			{Path: "noisy", Content: strings.Join(newParts, "\n\n")},
		},
	)

	byPath := make(map[string]entity.SectionDiff)
	for _, sec := range out.Sections {
		byPath[sec.SectionPath] = sec
	}

	assert.LessOrEqual(t, len(byPath["noisy"].Changes), maxChangeSpans)
	for _, span := range byPath["noisy"].Changes {
		assert.LessOrEqual(t, len(span.OldText), maxSpanChars+3)
		assert.LessOrEqual(t, len(span.NewText), maxSpanChars+3)
	}

	deleted := byPath["gone"].OldText
	assert.LessOrEqual(t, len(deleted), maxSpanChars+3)
	assert.True(t, strings.HasSuffix(deleted, "..."))
}

func TestCompareTextPreviewTruncation(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 200; i++ {
		oldLines = append(oldLines, "old line")
		newLines = append(newLines, "new line")
	}

	out := CompareText(
		[]Section{{Path: "body", Content: strings.Join(oldLines, "\n")}},
		[]Section{{Path: "body", Content: strings.Join(newLines, "\n")}},
	)

	preview := out.Sections[0].DiffPreview
	assert.LessOrEqual(t, len(strings.Split(preview, "\n")), maxPreviewLines+1)
	assert.True(t, strings.HasSuffix(preview, "... (truncated)"))
}

func TestCompareTextBlankLineOnlyDifferenceIsUnchanged(t *testing.T) {
	out := CompareText(
		[]Section{{Path: "terms", Content: "Payment is due in 30 days."}},
		[]Section{{Path: "terms", Content: "Payment is due in 30 days.\n\n"}},
	)

	assert.Equal(t, 1, out.Stats.Unchanged)
	assert.Equal(t, 0, out.Stats.Modified)
	assert.Empty(t, out.Sections)
}

func TestTruncateTextCutsOnRuneBoundary(t *testing.T) {
	content := strings.Repeat("日", 200)

	out := truncateText(content, maxSpanChars)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len(out), maxSpanChars+3)
}

func TestCompareTextIdenticalInputs(t *testing.T) {
	sections := []Section{
		{Path: "a", Content: "same"},
		{Path: "b", Content: "also same"},
	}

	out := CompareText(sections, sections)

	assert.Equal(t, 2, out.Stats.Unchanged)
	assert.Empty(t, out.Sections)
}
