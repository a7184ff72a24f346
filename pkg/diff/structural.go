package diff

import (
	"strings"

	"docai-platform-be/internal/entity"

	"github.com/pmezard/go-difflib/difflib"
)

// renameSimilarityFloor is the minimum content ratio for pairing a
// deleted section label with an added one as a rename.
const renameSimilarityFloor = 0.6

// CompareStructure diffs the two tables of contents: label sets for
// added/deleted, content matching for renames, and relative position
// among common labels for reorders.
func CompareStructure(oldSections, newSections []Section) entity.StructuralDiff {
	oldByPath := indexSections(oldSections)
	newByPath := indexSections(newSections)

	out := entity.StructuralDiff{
		TotalOld: len(oldSections),
		TotalNew: len(newSections),
	}

	var deleted, added []string
	for _, sec := range oldSections {
		if _, ok := newByPath[sec.Path]; ok {
			out.CommonSections = append(out.CommonSections, sec.Path)
		} else {
			deleted = append(deleted, sec.Path)
		}
	}
	for _, sec := range newSections {
		if _, ok := oldByPath[sec.Path]; !ok {
			added = append(added, sec.Path)
		}
	}

	out.RenamedSections, out.DeletedSections, out.AddedSections = inferRenames(deleted, added, oldByPath, newByPath)
	out.ReorderedSections = findReorders(oldSections, newSections, newByPath, oldByPath)
	return out
}

// inferRenames greedily pairs each deleted label with the most similar
// added label by content. Ties keep the earlier added section in
// document order. Paired labels leave the added/deleted lists.
func inferRenames(deleted, added []string, oldByPath, newByPath map[string]string) ([]entity.RenamedSection, []string, []string) {
	var renames []entity.RenamedSection
	usedAdded := make(map[string]bool)

	var remainingDeleted []string
	for _, oldPath := range deleted {
		bestPath := ""
		bestRatio := 0.0
		for _, newPath := range added {
			if usedAdded[newPath] {
				continue
			}
			ratio := contentRatio(oldByPath[oldPath], newByPath[newPath])
			if ratio > bestRatio {
				bestRatio = ratio
				bestPath = newPath
			}
		}
		if bestPath != "" && bestRatio > renameSimilarityFloor {
			usedAdded[bestPath] = true
			renames = append(renames, entity.RenamedSection{
				OldName:    oldPath,
				NewName:    bestPath,
				Similarity: bestRatio,
			})
		} else {
			remainingDeleted = append(remainingDeleted, oldPath)
		}
	}

	var remainingAdded []string
	for _, newPath := range added {
		if !usedAdded[newPath] {
			remainingAdded = append(remainingAdded, newPath)
		}
	}
	return renames, remainingDeleted, remainingAdded
}

// findReorders compares each common label's index among the common
// labels only, so insertions and deletions around it do not count as
// movement.
func findReorders(oldSections, newSections []Section, newByPath, oldByPath map[string]string) []entity.ReorderedSection {
	oldOrder := commonOrder(oldSections, newByPath)
	newOrder := commonOrder(newSections, oldByPath)

	newIndex := make(map[string]int, len(newOrder))
	for i, path := range newOrder {
		newIndex[path] = i
	}

	var reorders []entity.ReorderedSection
	for oldPos, path := range oldOrder {
		newPos, ok := newIndex[path]
		if !ok || newPos == oldPos {
			continue
		}
		reorders = append(reorders, entity.ReorderedSection{
			SectionPath: path,
			OldPosition: oldPos,
			NewPosition: newPos,
		})
	}
	return reorders
}

func commonOrder(sections []Section, other map[string]string) []string {
	var order []string
	for _, sec := range sections {
		if _, ok := other[sec.Path]; ok {
			order = append(order, sec.Path)
		}
	}
	return order
}

// contentRatio compares word sequences; paragraph granularity is too
// coarse for single-paragraph sections.
func contentRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Fields(a), strings.Fields(b)).Ratio()
}
