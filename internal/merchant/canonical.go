package merchant

// knownMerchants maps lowercase name/domain variations to canonical display
// names. Lookups against this table are always done with a lowercased key.
var knownMerchants = map[string]string{
	// Amazon
	"amazon":       "Amazon",
	"amazon.com":   "Amazon",
	"amazon.co.uk": "Amazon UK",
	"amazon.ca":    "Amazon Canada",
	"amazon.de":    "Amazon Germany",
	"amazon.co.jp": "Amazon Japan",
	"amzn":         "Amazon",
	// Apple
	"apple":       "Apple",
	"apple.com":   "Apple",
	"apple store": "Apple",
	// Nike
	"nike":       "Nike",
	"nike.com":   "Nike",
	"nike store": "Nike",
	// Adidas
	"adidas":     "Adidas",
	"adidas.com": "Adidas",
	// Target
	"target":     "Target",
	"target.com": "Target",
	// Walmart
	"walmart":     "Walmart",
	"walmart.com": "Walmart",
	"wal-mart":    "Walmart",
	// Best Buy
	"best buy":    "Best Buy",
	"bestbuy":     "Best Buy",
	"bestbuy.com": "Best Buy",
	// Home Depot
	"home depot":     "Home Depot",
	"homedepot":      "Home Depot",
	"homedepot.com":  "Home Depot",
	"the home depot": "Home Depot",
	// Lowe's
	"lowes":     "Lowe's",
	"lowe's":    "Lowe's",
	"lowes.com": "Lowe's",
	// Costco
	"costco":           "Costco",
	"costco.com":       "Costco",
	"costco wholesale": "Costco",
	// Etsy
	"etsy":     "Etsy",
	"etsy.com": "Etsy",
	// eBay
	"ebay":     "eBay",
	"ebay.com": "eBay",
	// Nordstrom
	"nordstrom":     "Nordstrom",
	"nordstrom.com": "Nordstrom",
	// Macy's
	"macys":     "Macy's",
	"macy's":    "Macy's",
	"macys.com": "Macy's",
	// Sephora
	"sephora":     "Sephora",
	"sephora.com": "Sephora",
	// Ulta
	"ulta":        "Ulta Beauty",
	"ulta beauty": "Ulta Beauty",
	"ulta.com":    "Ulta Beauty",
	// Zara
	"zara":     "Zara",
	"zara.com": "Zara",
	// H&M
	"h&m":    "H&M",
	"hm":     "H&M",
	"hm.com": "H&M",
	// Uniqlo
	"uniqlo":     "Uniqlo",
	"uniqlo.com": "Uniqlo",
	// Gap
	"gap":     "Gap",
	"gap.com": "Gap",
	// Old Navy
	"old navy":    "Old Navy",
	"oldnavy":     "Old Navy",
	"oldnavy.com": "Old Navy",
	// Banana Republic
	"banana republic":    "Banana Republic",
	"bananarepublic":     "Banana Republic",
	"bananarepublic.com": "Banana Republic",
	// REI
	"rei":     "REI",
	"rei.com": "REI",
	// Patagonia
	"patagonia":     "Patagonia",
	"patagonia.com": "Patagonia",
	// Wayfair
	"wayfair":     "Wayfair",
	"wayfair.com": "Wayfair",
	// IKEA
	"ikea":     "IKEA",
	"ikea.com": "IKEA",
	// Chewy
	"chewy":     "Chewy",
	"chewy.com": "Chewy",
	// PetSmart
	"petsmart":     "PetSmart",
	"petsmart.com": "PetSmart",
	// Newegg
	"newegg":     "Newegg",
	"newegg.com": "Newegg",
	// B&H Photo
	"b&h":              "B&H Photo",
	"b&h photo":        "B&H Photo",
	"bhphoto":          "B&H Photo",
	"bhphotovideo.com": "B&H Photo",
}

// domainSuffixes are TLD suffixes stripped when matching a domain-looking
// name against the canonical table, longest variants first where ambiguous.
var domainSuffixes = []string{
	".com",
	".co.uk",
	".ca",
	".de",
	".fr",
	".co.jp",
	".jp",
	".cn",
	".au",
	".in",
	".net",
	".org",
	".io",
	".store",
	".shop",
}

// domainPrefixes are stripped once from the front of a domain during
// normalization.
var domainPrefixes = []string{"www.", "shop.", "store.", "order.", "orders."}

// corporateSuffixes are trailing legal forms stripped from merchant names.
var corporateSuffixes = []string{
	", inc.",
	", inc",
	" inc.",
	" inc",
	", llc",
	" llc",
	", ltd",
	" ltd",
	" co.",
	" co",
	", corp",
	" corp",
}

// knownAcronyms are brand tokens always rendered fully uppercase.
var knownAcronyms = map[string]bool{
	"rei":  true,
	"ikea": true,
	"h&m":  true,
	"dhl":  true,
	"ups":  true,
	"usps": true,
	"bh":   true,
}
