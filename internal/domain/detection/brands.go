package detection

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// popularBrands is the phishing target corpus. Order matters: the detector
// reports the first matching brand, so higher-traffic targets come first.
var popularBrands = []domain.BrandEntry{
	{Name: "google", Domains: []string{"google.com", "gmail.com", "youtube.com"}},
	{Name: "microsoft", Domains: []string{"microsoft.com", "outlook.com", "live.com", "office.com"}},
	{Name: "apple", Domains: []string{"apple.com", "icloud.com"}},
	{Name: "amazon", Domains: []string{"amazon.com", "aws.amazon.com"}},
	{Name: "facebook", Domains: []string{"facebook.com", "fb.com", "meta.com"}},
	{Name: "instagram", Domains: []string{"instagram.com"}},
	{Name: "twitter", Domains: []string{"twitter.com", "x.com"}},
	{Name: "linkedin", Domains: []string{"linkedin.com"}},
	{Name: "netflix", Domains: []string{"netflix.com"}},
	{Name: "spotify", Domains: []string{"spotify.com"}},
	{Name: "discord", Domains: []string{"discord.com", "discord.gg"}},
	{Name: "github", Domains: []string{"github.com"}},
	{Name: "dropbox", Domains: []string{"dropbox.com"}},
	{Name: "paypal", Domains: []string{"paypal.com"}},
	{Name: "chase", Domains: []string{"chase.com"}},
	{Name: "bankofamerica", Domains: []string{"bankofamerica.com", "bofa.com"}},
	{Name: "wellsfargo", Domains: []string{"wellsfargo.com"}},
	{Name: "citibank", Domains: []string{"citi.com", "citibank.com"}},
	{Name: "venmo", Domains: []string{"venmo.com"}},
	{Name: "stripe", Domains: []string{"stripe.com"}},
	{Name: "coinbase", Domains: []string{"coinbase.com"}},
	{Name: "binance", Domains: []string{"binance.com"}},
	{Name: "fedex", Domains: []string{"fedex.com"}},
	{Name: "ups", Domains: []string{"ups.com"}},
	{Name: "usps", Domains: []string{"usps.com"}},
	{Name: "dhl", Domains: []string{"dhl.com"}},
	{Name: "walmart", Domains: []string{"walmart.com"}},
	{Name: "ebay", Domains: []string{"ebay.com"}},
	{Name: "adobe", Domains: []string{"adobe.com"}},
	{Name: "zoom", Domains: []string{"zoom.us"}},
}

// KnownBrands returns the ordered phishing target corpus
func KnownBrands() []domain.BrandEntry {
	return popularBrands
}

// canonicalBrandMaxRank bounds how far a free-text brand may drift from the
// corpus name and still count as the same brand. Six absorbs org suffixes
// like ", Inc." without letting short brand names match inside sentences.
const canonicalBrandMaxRank = 6

// CanonicalBrand maps a free-text brand name, typically the vision model's
// BRAND line, onto the corpus. Returns the corpus name and whether a
// sufficiently close match exists. Ties resolve to the earlier corpus entry.
func CanonicalBrand(name string) (string, bool) {
	compact := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
	if compact == "" {
		return "", false
	}

	best, bestRank := "", -1
	for _, brand := range popularBrands {
		if compact == brand.Name {
			return brand.Name, true
		}
		rank := fuzzy.RankMatchNormalizedFold(brand.Name, compact)
		if rank < 0 || rank > canonicalBrandMaxRank {
			continue
		}
		if bestRank < 0 || rank < bestRank {
			best, bestRank = brand.Name, rank
		}
	}
	if bestRank < 0 {
		return "", false
	}
	return best, true
}
