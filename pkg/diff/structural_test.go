package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareStructureAddedDeletedCommon(t *testing.T) {
	oldSections := []Section{
		{Path: "intro", Content: "Welcome."},
		{Path: "leave", Content: "Leave policy."},
		{Path: "legacy", Content: "Old rules about fax machines."},
	}
	newSections := []Section{
		{Path: "intro", Content: "Welcome."},
		{Path: "leave", Content: "Leave policy."},
		{Path: "security", Content: "Completely unrelated security content."},
	}

	out := CompareStructure(oldSections, newSections)

	assert.Equal(t, 3, out.TotalOld)
	assert.Equal(t, 3, out.TotalNew)
	assert.Equal(t, []string{"intro", "leave"}, out.CommonSections)
	assert.Equal(t, []string{"legacy"}, out.DeletedSections)
	assert.Equal(t, []string{"security"}, out.AddedSections)
	assert.Empty(t, out.RenamedSections)
	assert.Empty(t, out.ReorderedSections)
}

func TestCompareStructureInfersRename(t *testing.T) {
	content := "Employees may work remotely up to two days per week with manager approval."
	oldSections := []Section{
		{Path: "telecommuting", Content: content},
	}
	newSections := []Section{
		{Path: "remote-work", Content: content + " Requests go through the HR portal."},
	}

	out := CompareStructure(oldSections, newSections)

	assert.Len(t, out.RenamedSections, 1)
	rename := out.RenamedSections[0]
	assert.Equal(t, "telecommuting", rename.OldName)
	assert.Equal(t, "remote-work", rename.NewName)
	assert.Greater(t, rename.Similarity, renameSimilarityFloor)
	assert.Empty(t, out.DeletedSections)
	assert.Empty(t, out.AddedSections)
}

func TestCompareStructureRenameFloorNotMet(t *testing.T) {
	oldSections := []Section{
		{Path: "benefits", Content: "Health insurance and retirement plans."},
	}
	newSections := []Section{
		{Path: "parking", Content: "Garage access requires a registered badge."},
	}

	out := CompareStructure(oldSections, newSections)

	assert.Empty(t, out.RenamedSections)
	assert.Equal(t, []string{"benefits"}, out.DeletedSections)
	assert.Equal(t, []string{"parking"}, out.AddedSections)
}

func TestCompareStructureGreedyRenameKeepsBestMatch(t *testing.T) {
	oldSections := []Section{
		{Path: "old-a", Content: "alpha beta gamma delta epsilon zeta"},
	}
	newSections := []Section{
		{Path: "new-close", Content: "alpha beta gamma delta epsilon eta"},
		{Path: "new-far", Content: "alpha beta gamma nine ten eleven"},
	}

	out := CompareStructure(oldSections, newSections)

	assert.Len(t, out.RenamedSections, 1)
	assert.Equal(t, "new-close", out.RenamedSections[0].NewName)
	assert.Equal(t, []string{"new-far"}, out.AddedSections)
}

func TestCompareStructureReorders(t *testing.T) {
	oldSections := []Section{
		{Path: "a", Content: "a"},
		{Path: "b", Content: "b"},
		{Path: "c", Content: "c"},
	}
	newSections := []Section{
		{Path: "b", Content: "b"},
		{Path: "a", Content: "a"},
		{Path: "c", Content: "c"},
	}

	out := CompareStructure(oldSections, newSections)

	assert.Len(t, out.ReorderedSections, 2)
	moved := make(map[string][2]int)
	for _, r := range out.ReorderedSections {
		moved[r.SectionPath] = [2]int{r.OldPosition, r.NewPosition}
	}
	assert.Equal(t, [2]int{0, 1}, moved["a"])
	assert.Equal(t, [2]int{1, 0}, moved["b"])
	assert.NotContains(t, moved, "c")
}

func TestCompareStructureInsertionIsNotReorder(t *testing.T) {
	oldSections := []Section{
		{Path: "a", Content: "a"},
		{Path: "b", Content: "b"},
	}
	newSections := []Section{
		{Path: "preface", Content: "brand new completely different words here"},
		{Path: "a", Content: "a"},
		{Path: "b", Content: "b"},
	}

	out := CompareStructure(oldSections, newSections)

	// Positions are taken among common labels only, so an insertion at
	// the front does not shift anything.
	assert.Empty(t, out.ReorderedSections)
	assert.Equal(t, []string{"preface"}, out.AddedSections)
}
