package merchant

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"empty string", "", ""},
		{"simple domain", "amazon.com", "amazon.com"},
		{"uppercase domain", "AMAZON.COM", "amazon.com"},
		{"www prefix", "www.amazon.com", "amazon.com"},
		{"shop prefix", "shop.nike.com", "nike.com"},
		{"store prefix", "store.apple.com", "apple.com"},
		{"whitespace", "  amazon.com  ", "amazon.com"},
		{"mixed case with prefix", "WWW.Amazon.COM", "amazon.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeDomain(tt.input))
		})
	}
}

func TestNormalizeDomainIdempotent(t *testing.T) {
	domains := []string{"www.amazon.com", "SHOP.nike.com", "target.com", "", "  store.apple.com "}
	for _, d := range domains {
		once := NormalizeDomain(d)
		assert.Equal(t, once, NormalizeDomain(once), "normalizing twice must equal normalizing once for %q", d)
	}
}

func TestExtractDomainFromURL(t *testing.T) {
	assert.Equal(t, "amazon.com", ExtractDomainFromURL("https://amazon.com"))
	assert.Equal(t, "amazon.com", ExtractDomainFromURL("https://www.amazon.com/order/123"))
	assert.Equal(t, "nike.com", ExtractDomainFromURL("https://www.nike.com/products"))
	assert.Equal(t, "target.com", ExtractDomainFromURL("http://target.com/cart"))
	assert.Equal(t, "", ExtractDomainFromURL("not-a-url"))
	assert.Equal(t, "", ExtractDomainFromURL(""))
}

func TestNormalizeMerchantName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		domain string
		expect string
	}{
		{"known merchant uppercase", "AMAZON", "", "Amazon"},
		{"known merchant lowercase", "amazon", "", "Amazon"},
		{"known merchant mixed case", "AmAzOn", "", "Amazon"},
		{"domain in name", "amazon.com", "", "Amazon"},
		{"domain context wins", "Some Store", "amazon.com", "Amazon"},
		{"nike", "NIKE", "", "Nike"},
		{"target", "target", "", "Target"},
		{"walmart hyphenated", "wal-mart", "", "Walmart"},
		{"macys", "macys", "", "Macy's"},
		{"bestbuy", "bestbuy", "", "Best Buy"},
		{"homedepot", "homedepot", "", "Home Depot"},
		{"unknown title case", "some random store", "", "Some Random Store"},
		{"unknown all caps", "SOME RANDOM STORE", "", "Some Random Store"},
		{"corporate suffix inc", "Some Store, Inc.", "", "Some Store"},
		{"corporate suffix llc", "Another Store LLC", "", "Another Store"},
		{"empty name", "", "", ""},
		{"intentional casing preserved", "eBay", "", "eBay"},
		{"acronym preserved", "REI", "", "REI"},
		{"ulta expands", "ulta", "", "Ulta Beauty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeMerchantName(tt.input, tt.domain))
		})
	}
}

func TestNormalizeMerchantNameDomainMismatch(t *testing.T) {
	// The name does not match anything, but the domain is known canonical.
	assert.Equal(t, "Nike", NormalizeMerchantName("Generic Store Name", "nike.com"))
}

func TestGenerateMerchantAliases(t *testing.T) {
	t.Run("simple name", func(t *testing.T) {
		assert.Contains(t, GenerateMerchantAliases("Nike", ""), "nike")
	})

	t.Run("spaces removed and hyphenated", func(t *testing.T) {
		aliases := GenerateMerchantAliases("Best Buy", "")
		assert.Contains(t, aliases, "best buy")
		assert.Contains(t, aliases, "bestbuy")
		assert.Contains(t, aliases, "best-buy")
	})

	t.Run("domain variants", func(t *testing.T) {
		aliases := GenerateMerchantAliases("Amazon", "amazon.com")
		assert.Contains(t, aliases, "amazon.com")
		assert.Contains(t, aliases, "amazon")
	})

	t.Run("apostrophes", func(t *testing.T) {
		aliases := GenerateMerchantAliases("Macy's", "")
		assert.Contains(t, aliases, "macy's")
		assert.Contains(t, aliases, "macys")
	})

	t.Run("ampersands", func(t *testing.T) {
		aliases := GenerateMerchantAliases("H&M", "")
		assert.Contains(t, aliases, "h&m")
		assert.Contains(t, aliases, "hm")
		assert.Contains(t, aliases, "handm")
	})

	t.Run("sorted without duplicates", func(t *testing.T) {
		aliases := GenerateMerchantAliases("Nike", "nike.com")
		assert.True(t, sort.StringsAreSorted(aliases))
		seen := map[string]bool{}
		for _, a := range aliases {
			assert.False(t, seen[a], "duplicate alias %q", a)
			seen[a] = true
		}
	})
}

func TestMatchByAlias(t *testing.T) {
	aliasesByID := map[string][]string{
		"m1": {"nike", "nike.com"},
		"m2": {"best buy", "bestbuy", "best-buy"},
	}
	assert.Equal(t, "m2", MatchByAlias("BestBuy", aliasesByID))
	assert.Equal(t, "m1", MatchByAlias(" nike ", aliasesByID))
	assert.Equal(t, "", MatchByAlias("unknown shop", aliasesByID))
}

func TestNormalizationWorkflow(t *testing.T) {
	normalized := NormalizeMerchantName("AMAZON.COM", "www.amazon.com")
	aliases := GenerateMerchantAliases(normalized, "www.amazon.com")

	assert.Equal(t, "Amazon", normalized)
	assert.Contains(t, aliases, "amazon")
	assert.Contains(t, aliases, "amazon.com")

	normalized = NormalizeMerchantName("my cool store", "mycoolstore.com")
	aliases = GenerateMerchantAliases(normalized, "mycoolstore.com")

	assert.Equal(t, "My Cool Store", normalized)
	assert.Contains(t, aliases, "my cool store")
	assert.Contains(t, aliases, "mycoolstore")
	assert.Contains(t, aliases, "mycoolstore.com")
}
