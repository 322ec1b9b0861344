package order

import (
	"fmt"
	"regexp"
	"strings"
)

// Campaign pricing, in DZD. One base price for every watch of the
// collection plus a surcharge per delivery method.
const BasePrice = 2500

var DeliveryCost = map[DeliveryOption]int{
	DeliveryHome:   700,
	DeliveryOffice: 450,
}

// CatalogSize is how many watches the landing page offers (w1..w20).
const CatalogSize = 20

var watchIDPattern = regexp.MustCompile(`^w\d+$`)

// KnownWatchID reports whether id is one of the catalog tokens.
func KnownWatchID(id string) bool {
	return watchIDPattern.MatchString(id)
}

// WatchLabel resolves a catalog token to its Arabic display label.
// Unknown tokens pass through unchanged, "" becomes the unset marker.
func WatchLabel(id string) string {
	if id == "" {
		return "غير محدد"
	}
	if watchIDPattern.MatchString(id) {
		return "ساعة رقم " + strings.TrimPrefix(id, "w")
	}
	return id
}

// DeliveryLabel resolves a delivery option to its Arabic display label.
func DeliveryLabel(d DeliveryOption) string {
	switch d {
	case DeliveryHome:
		return "المنزل"
	case DeliveryOffice:
		return "المكتب"
	default:
		return "غير محدد"
	}
}

// Total computes the payable amount for a delivery choice.
func Total(d DeliveryOption) int {
	return BasePrice + DeliveryCost[d]
}

// FormatTotal renders an amount the way the sheet and notifications show
// it, with the dinar suffix.
func FormatTotal(total int) string {
	return fmt.Sprintf("%d دج", total)
}
