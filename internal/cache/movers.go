package cache

import (
	"math"
	"sort"

	"github.com/finvue/marketsync/internal/model"
)

// Categorize partitions movers records into the three fixed categories and
// sorts each one. The view is re-derived fresh on every accepted update.
//
// Partitioning honours an explicit record category; records without one are
// classified by the sign of their percent change so every record lands in
// exactly one category. Within a category, ranked records sort before
// unranked ones, descending by rank; unranked records fall back to
// descending absolute percent change.
func Categorize(records []model.Record) model.CategorizedSnapshot {
	var snap model.CategorizedSnapshot

	for _, r := range records {
		switch r.Category {
		case model.CategoryGainers:
			snap.Gainers = append(snap.Gainers, r)
		case model.CategoryLosers:
			snap.Losers = append(snap.Losers, r)
		case model.CategoryMostActive:
			snap.MostActive = append(snap.MostActive, r)
		default:
			if r.ChangePct < 0 {
				snap.Losers = append(snap.Losers, r)
			} else {
				snap.Gainers = append(snap.Gainers, r)
			}
		}
	}

	sortCategory(snap.Gainers)
	sortCategory(snap.Losers)
	sortCategory(snap.MostActive)

	return snap
}

// sortCategory orders records descending by rank with a |percent-change|
// fallback. Stable so ties keep their incoming order.
func sortCategory(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i].Rank, records[j].Rank
		switch {
		case ri > 0 && rj > 0:
			return ri > rj
		case ri > 0:
			return true
		case rj > 0:
			return false
		default:
			return math.Abs(records[i].ChangePct) > math.Abs(records[j].ChangePct)
		}
	})
}
