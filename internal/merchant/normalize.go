// Package merchant implements merchant identity normalization: canonical
// display names, normalized domains, and alias generation for fuzzy lookup.
//
// All functions in this package are total: they never fail, and empty input
// degrades to empty output.
package merchant

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// NormalizeDomain normalizes a domain to its canonical form: lowercased,
// trimmed, with a single leading prefix such as "www." or "shop." removed.
// Returns "" for empty input.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	for _, prefix := range domainPrefixes {
		if strings.HasPrefix(domain, prefix) {
			domain = domain[len(prefix):]
			break
		}
	}
	return domain
}

// ExtractDomainFromURL extracts and normalizes the host component of a URL.
// Returns "" when the input has no parseable host.
func ExtractDomainFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return NormalizeDomain(u.Hostname())
}

// NormalizeMerchantName maps a raw merchant name to its canonical display
// form. Resolution order: exact canonical-table match, domain-based match,
// domain-looking-name match, corporate-suffix stripping, then a title-case
// fallback that preserves intentional casing and acronyms.
func NormalizeMerchantName(name, domain string) string {
	if name == "" {
		return name
	}

	cleaned := strings.TrimSpace(name)
	key := strings.ToLower(cleaned)

	if canonical, ok := knownMerchants[key]; ok {
		return canonical
	}

	if domain != "" {
		if canonical, ok := knownMerchants[NormalizeDomain(domain)]; ok {
			return canonical
		}
	}

	// The name itself may be a domain ("amazon.com"), possibly with a
	// prefix; strip the TLD suffix and retry the table.
	if strings.Contains(key, ".") {
		if canonical, ok := knownMerchants[NormalizeDomain(key)]; ok {
			return canonical
		}
		for _, suffix := range domainSuffixes {
			if strings.HasSuffix(key, suffix) {
				if canonical, ok := knownMerchants[strings.TrimSuffix(key, suffix)]; ok {
					return canonical
				}
				break
			}
		}
	}

	for _, suffix := range corporateSuffixes {
		if strings.HasSuffix(key, suffix) {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(suffix)])
			key = strings.ToLower(cleaned)
			if canonical, ok := knownMerchants[key]; ok {
				return canonical
			}
			break
		}
	}

	return titleCaseMerchant(cleaned)
}

var tokenSplit = regexp.MustCompile(`(\s+|-)`)

// titleCaseMerchant title-cases a merchant name while keeping intentional
// mid-word capitals ("eBay"), short all-caps acronyms, and known brand
// acronyms intact.
func titleCaseMerchant(name string) string {
	if !isUpperString(name) && !isLowerString(name) {
		if hasMidCaps(name) {
			return name
		}
	}

	var b strings.Builder
	for _, word := range splitPreservingDelims(name) {
		switch {
		case word == "" || word == "-" || strings.TrimSpace(word) == "":
			b.WriteString(word)
		case knownAcronyms[strings.ToLower(word)]:
			b.WriteString(strings.ToUpper(word))
		case isUpperString(word) && letterCount(word) >= 2 && letterCount(word) <= 3:
			b.WriteString(word)
		default:
			b.WriteString(capitalize(word))
		}
	}
	return b.String()
}

// GenerateMerchantAliases returns a deduplicated, sorted set of lowercase
// variants for a canonical merchant name: the name itself, space-stripped and
// hyphenated forms, the normalized domain with and without its TLD, an
// apostrophe-free form, and ampersand variants.
func GenerateMerchantAliases(name, domain string) []string {
	aliases := make(map[string]struct{})
	add := func(s string) {
		if s != "" {
			aliases[s] = struct{}{}
		}
	}

	lower := strings.ToLower(name)
	add(lower)
	add(strings.ReplaceAll(lower, " ", ""))
	add(strings.ReplaceAll(lower, " ", "-"))

	if d := NormalizeDomain(domain); d != "" {
		add(d)
		for _, suffix := range domainSuffixes {
			if strings.HasSuffix(d, suffix) {
				add(strings.TrimSuffix(d, suffix))
				break
			}
		}
	}

	if strings.Contains(lower, "'") {
		add(strings.ReplaceAll(lower, "'", ""))
	}
	if strings.Contains(lower, "&") {
		add(strings.ReplaceAll(lower, "&", "and"))
		add(strings.ReplaceAll(lower, "&", ""))
		add(strings.ReplaceAll(lower, " & ", " "))
	}

	out := make([]string, 0, len(aliases))
	for a := range aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// MatchByAlias finds a merchant id whose alias set contains the query.
// Returns "" when nothing matches.
func MatchByAlias(query string, aliasesByID map[string][]string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	for id, aliases := range aliasesByID {
		for _, a := range aliases {
			if a == q {
				return id
			}
		}
	}
	return ""
}

func splitPreservingDelims(s string) []string {
	var parts []string
	last := 0
	for _, loc := range tokenSplit.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}

// isUpperString reports whether s contains at least one letter and no
// lowercase letters.
func isUpperString(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isLowerString reports whether s contains at least one letter and no
// uppercase letters.
func isLowerString(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// hasMidCaps reports whether any letter past the first rune is uppercase.
func hasMidCaps(s string) bool {
	first := true
	for _, r := range s {
		if first {
			first = false
			continue
		}
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
