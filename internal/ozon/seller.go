package ozon

import "regexp"

// Seller references come in three forms: a raw numeric id, a storefront URL
// carrying an explicit miniapp parameter, and a storefront URL whose seller
// path segment ends in the numeric id ("/seller/magazin-shoes-778899/").
var sellerRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]miniapp=seller_(\d+)`),
	regexp.MustCompile(`/seller/(?:[^/]*?-)?(\d+)(?:/|$)`),
}

var numericRef = regexp.MustCompile(`^\d+$`)

// ResolveSellerRef extracts the numeric seller id from a raw id or a
// storefront URL. Returns "" when no pattern matches.
func ResolveSellerRef(ref string) string {
	if numericRef.MatchString(ref) {
		return ref
	}
	for _, pattern := range sellerRefPatterns {
		if m := pattern.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	return ""
}
