package diff

import (
	"strings"
	"unicode/utf8"

	"docai-platform-be/internal/entity"

	"github.com/pmezard/go-difflib/difflib"
)

// Caps keep stored diff payloads bounded for pathological documents.
const (
	maxChangeSpans  = 30
	maxSpanChars    = 500
	maxPreviewLines = 50
	unifiedDiffCtx  = 2
)

// CompareText aligns sections by path and computes paragraph-level edit
// operations for each modified pair. Unchanged sections are counted but
// not materialized.
func CompareText(oldSections, newSections []Section) entity.TextDiff {
	oldByPath := indexSections(oldSections)
	newByPath := indexSections(newSections)

	var out entity.TextDiff
	for _, sec := range oldSections {
		newContent, ok := newByPath[sec.Path]
		if !ok {
			out.Stats.Deleted++
			out.Sections = append(out.Sections, entity.SectionDiff{
				SectionPath: sec.Path,
				Status:      entity.SectionDeleted,
				OldText:     truncateText(sec.Content, maxSpanChars),
			})
			continue
		}
		if sec.Content == newContent {
			out.Stats.Unchanged++
			continue
		}
		// Raw contents can differ while every paragraph survives the
		// trim, e.g. extra blank lines. No spans means no change.
		spans := changeSpans(sec.Content, newContent)
		if len(spans) == 0 {
			out.Stats.Unchanged++
			continue
		}
		out.Stats.Modified++
		out.Sections = append(out.Sections, entity.SectionDiff{
			SectionPath: sec.Path,
			Status:      entity.SectionModified,
			Changes:     spans,
			DiffPreview: unifiedPreview(sec.Content, newContent),
		})
	}
	for _, sec := range newSections {
		if _, ok := oldByPath[sec.Path]; ok {
			continue
		}
		out.Stats.Added++
		out.Sections = append(out.Sections, entity.SectionDiff{
			SectionPath: sec.Path,
			Status:      entity.SectionAdded,
			NewText:     truncateText(sec.Content, maxSpanChars),
		})
	}
	return out
}

func indexSections(sections []Section) map[string]string {
	m := make(map[string]string, len(sections))
	for _, sec := range sections {
		m[sec.Path] = sec.Content
	}
	return m
}

// changeSpans runs the sequence matcher over paragraphs and keeps the
// non-equal opcodes, capped in count and per-side length.
func changeSpans(oldText, newText string) []entity.ChangeSpan {
	oldParas := splitParagraphs(oldText)
	newParas := splitParagraphs(newText)

	matcher := difflib.NewMatcher(oldParas, newParas)
	var spans []entity.ChangeSpan
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		if len(spans) >= maxChangeSpans {
			break
		}
		span := entity.ChangeSpan{}
		switch op.Tag {
		case 'r':
			span.Type = entity.ChangeReplace
			span.OldText = truncateText(strings.Join(oldParas[op.I1:op.I2], "\n\n"), maxSpanChars)
			span.NewText = truncateText(strings.Join(newParas[op.J1:op.J2], "\n\n"), maxSpanChars)
		case 'd':
			span.Type = entity.ChangeDelete
			span.OldText = truncateText(strings.Join(oldParas[op.I1:op.I2], "\n\n"), maxSpanChars)
		case 'i':
			span.Type = entity.ChangeInsert
			span.NewText = truncateText(strings.Join(newParas[op.J1:op.J2], "\n\n"), maxSpanChars)
		default:
			continue
		}
		spans = append(spans, span)
	}
	return spans
}

func unifiedPreview(oldText, newText string) string {
	preview, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "old",
		ToFile:   "new",
		Context:  unifiedDiffCtx,
	})
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(preview, "\n"), "\n")
	if len(lines) > maxPreviewLines {
		lines = lines[:maxPreviewLines]
		lines = append(lines, "... (truncated)")
	}
	return strings.Join(lines, "\n")
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Never cut a multi-byte rune in half.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
