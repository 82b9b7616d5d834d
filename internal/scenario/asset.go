package scenario

import (
	"strconv"
	"strings"
)

// SplitPage separates a "deck.pdf#3" style reference into the file path and
// a 1-based page number. References without a numeric fragment return page 0.
func SplitPage(asset string) (string, int) {
	i := strings.LastIndex(asset, "#")
	if i < 0 {
		return asset, 0
	}
	page, err := strconv.Atoi(asset[i+1:])
	if err != nil || page < 1 {
		return asset, 0
	}
	return asset[:i], page
}
