package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// similarityThreshold is the minimum edit-distance similarity for the
// generic lookalike check. Tuned to catch one-or-two-character typos of
// short brand names without flagging unrelated domains.
const similarityThreshold = 0.75

// substitution maps a lookalike sequence back to its canonical form
type substitution struct {
	canonical string
	lookalike string
}

// letterSwaps is applied as an ordered chain of whole-string replacements.
// Order is significant: earlier replacements feed later ones, so the chain
// as a whole undoes common leetspeak spellings (paypa1 -> paypal,
// g00gle -> google).
var letterSwaps = []substitution{
	{"a", "4"}, {"a", "@"}, {"a", "e"},
	{"e", "3"}, {"e", "i"},
	{"i", "1"}, {"i", "l"}, {"i", "!"},
	{"l", "1"}, {"l", "i"}, {"l", "|"},
	{"o", "0"}, {"o", "u"},
	{"s", "5"}, {"s", "$"},
	{"g", "9"}, {"g", "q"},
	{"b", "8"}, {"t", "7"}, {"z", "2"},
}

// homoglyphs maps multi-character lookalikes to the single glyph they
// imitate in most fonts (arnazon -> amazon)
var homoglyphs = []substitution{
	{"m", "rn"}, {"w", "vv"}, {"d", "cl"}, {"m", "nn"},
}

// desubstitute runs a substitution chain over s in declaration order
func desubstitute(s string, chain []substitution) string {
	for _, sub := range chain {
		s = strings.ReplaceAll(s, sub.lookalike, sub.canonical)
	}
	return s
}

// DetectTyposquat checks a hostname against the brand corpus and reports
// the first brand it appears to imitate.
//
// The function is total: empty input, IP literals and single-label hosts
// return the zero result. A hostname that IS a legitimate brand domain (or
// a true subdomain of one) short-circuits before any similarity check so
// the real paypal.com can never be flagged as a paypal lookalike.
func DetectTyposquat(hostname string) domain.TyposquatResult {
	result := domain.TyposquatResult{Technique: domain.TechniqueNone}

	host := strings.TrimPrefix(domain.NormalizeHostname(hostname), "www.")
	parts := domain.SplitHost(host)
	if parts.Hostname == "" || parts.IsIP || parts.Label == "" {
		return result
	}
	label := parts.Label

	// The label plus, for hyphenated labels, each hyphen token. Attackers
	// embed brand names whole ("paypal-verify"), which no edit-distance
	// check against the full label would catch.
	candidates := []string{label}
	if strings.Contains(label, "-") {
		for _, token := range strings.Split(label, "-") {
			if token != "" {
				candidates = append(candidates, token)
			}
		}
	}

	for _, brand := range popularBrands {
		for _, legit := range brand.Domains {
			if host == legit || strings.HasSuffix(host, "."+legit) {
				result.Notes = append(result.Notes, fmt.Sprintf("legitimate domain for %s", brand.Name))
				return result
			}
		}

		for _, candidate := range candidates {
			if hit := checkBrand(candidate, label, brand.Name); hit != nil {
				return *hit
			}
		}
	}

	return result
}

// checkBrand runs the lookalike checks for one candidate string against one
// brand name. The substitution and homoglyph checks run before the generic
// edit-distance check so that a clean desubstituted match reports its
// specific technique rather than a weaker similarity percentage.
func checkBrand(candidate, label, brand string) *domain.TyposquatResult {
	// Exact brand name as a hyphen token of a longer label
	if candidate != label && candidate == brand {
		return &domain.TyposquatResult{
			IsTyposquat:     true,
			SuspectedBrand:  brand,
			SimilarityScore: 100,
			Technique:       classifyTechnique(label, brand),
			Notes:           []string{fmt.Sprintf("brand name '%s' embedded in domain", brand)},
		}
	}

	if desub := desubstitute(candidate, letterSwaps); desub != candidate && levenshtein.ComputeDistance(desub, brand) <= 1 {
		return &domain.TyposquatResult{
			IsTyposquat:     true,
			SuspectedBrand:  brand,
			SimilarityScore: 95,
			Technique:       domain.TechniqueLetterSubstitution,
			Notes:           []string{fmt.Sprintf("character substitution mimics '%s'", brand)},
		}
	}

	if deglyphed := desubstitute(candidate, homoglyphs); deglyphed != candidate && levenshtein.ComputeDistance(deglyphed, brand) <= 1 {
		return &domain.TyposquatResult{
			IsTyposquat:     true,
			SuspectedBrand:  brand,
			SimilarityScore: 90,
			Technique:       domain.TechniqueHomoglyph,
			Notes:           []string{fmt.Sprintf("lookalike characters mimic '%s'", brand)},
		}
	}

	maxLen := max(len(candidate), len(brand))
	if maxLen == 0 {
		return nil
	}
	distance := levenshtein.ComputeDistance(candidate, brand)
	similarity := 1.0 - float64(distance)/float64(maxLen)
	if similarity >= similarityThreshold && candidate != brand {
		score := int(math.Round(similarity * 100))
		return &domain.TyposquatResult{
			IsTyposquat:     true,
			SuspectedBrand:  brand,
			SimilarityScore: score,
			Technique:       classifyTechnique(candidate, brand),
			Notes:           []string{fmt.Sprintf("domain '%s' is %d%% similar to '%s'", label, score, brand)},
		}
	}

	return nil
}
