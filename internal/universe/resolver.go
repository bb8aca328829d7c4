package universe

import (
	"regexp"
	"sort"
	"strings"

	"coinpulse/internal/domain/models"
	"coinpulse/internal/gecko"
)

// wrappedAssetPattern matches catalog names of wrapped/bridged variants
// ("Wrapped Bitcoin", "Binance-Peg Ethereum", ...). Such listings duplicate
// the underlying coin under the same ticker and are dropped before grouping.
var wrappedAssetPattern = regexp.MustCompile(`(?i)\b(wrapped|binance-peg|bridged)`)

// Resolve computes the working set for one run: catalog listings whose
// lowercased symbol is in the supported set and whose id is not excluded,
// grouped by lowercased symbol. Wrapped/bridged variants are dropped before
// grouping.
//
// Resolve is a pure function of its inputs; the exclusion set is loaded at
// run start and persisted at run end by the caller.
func Resolve(catalog []gecko.CoinListing, supported, excluded map[string]struct{}) map[string][]gecko.CoinListing {
	groups := make(map[string][]gecko.CoinListing)

	for _, listing := range catalog {
		ticker := strings.ToLower(strings.TrimSpace(listing.Symbol))
		if ticker == "" {
			continue
		}
		if _, ok := supported[ticker]; !ok {
			continue
		}
		if _, ok := excluded[listing.ID]; ok {
			continue
		}
		if wrappedAssetPattern.MatchString(listing.Name) {
			continue
		}
		groups[ticker] = append(groups[ticker], listing)
	}

	return groups
}

// SelectCanonical breaks the tie among duplicate identifiers sharing one
// ticker: the id whose most recent non-zero market-cap observation is
// numerically largest wins. Candidates are visited in sorted-id order so
// exact ties resolve deterministically.
//
// Returns ok=false when no candidate has any market-cap observation — the
// "insufficient data" outcome. The ticker is then skipped for the run and
// nothing is blacklisted.
func SelectCanonical(candidates []gecko.CoinListing, seriesByID map[string][]models.MarketDatum) (string, bool) {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)

	var (
		bestID  string
		bestCap float64
		found   bool
	)
	for _, id := range ids {
		mc, ok := latestMarketCap(seriesByID[id])
		if !ok {
			continue
		}
		if !found || mc > bestCap {
			bestID = id
			bestCap = mc
			found = true
		}
	}

	return bestID, found
}

// latestMarketCap returns the most recent non-zero market-cap observation
// of a series, scanning from the newest record backwards.
func latestMarketCap(series []models.MarketDatum) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].MarketCap > 0 {
			return series[i].MarketCap, true
		}
	}
	return 0, false
}
