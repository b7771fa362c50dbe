package detection

import (
	"strings"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// classifyTechnique labels how a lookalike string differs from the brand it
// imitates, based on length and the positions that differ
func classifyTechnique(s, brand string) domain.Technique {
	if len(s) != len(brand) {
		if len(s) > len(brand) {
			return domain.TechniqueCharacterInsertion
		}
		return domain.TechniqueCharacterOmission
	}

	diffs := diffPositions(s, brand)
	switch len(diffs) {
	case 0:
		return domain.TechniqueNone
	case 1:
		return domain.TechniqueCharacterSwap
	case 2:
		i, j := diffs[0], diffs[1]
		// Two adjacent positions holding each other's characters is a
		// transposition, not two independent substitutions
		if j == i+1 && s[i] == brand[j] && s[j] == brand[i] {
			return domain.TechniqueAdjacentSwap
		}
		return domain.TechniqueCharacterSubstitution
	}
	return domain.TechniqueMultipleChanges
}

// diffPositions lists the indexes where two equal-length strings differ
func diffPositions(a, b string) []int {
	var diffs []int
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			diffs = append(diffs, i)
		}
	}
	return diffs
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
