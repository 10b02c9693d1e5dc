package services

import (
	"github.com/sahilm/fuzzy"

	"election-dashboard/internal/models"
)

// maxFuzzyLengthGap bounds how different two names may be in length before a
// fuzzy match between them is refused
const maxFuzzyLengthGap = 3

// JoinYear joins every boundary feature with the winner of one election year.
// Features match rows with the same join key; when several rows share the key
// (the same constituency name in two states) the row from the feature's state
// wins. With fuzzyMatch set, features still unmatched are paired with an
// unused row whose name is an unambiguous fuzzy match. Features without a
// winner are reported as OTHER / gray.
func JoinYear(features []*models.Constituency, rows []models.ResultRecord, fuzzyMatch bool) []models.MapEntry {
	byKey := make(map[string][]int)
	for i, r := range rows {
		if r.JoinKey == "" {
			continue
		}
		byKey[r.JoinKey] = append(byKey[r.JoinKey], i)
	}

	entries := make([]models.MapEntry, len(features))
	used := make(map[int]bool)
	unmatched := make([]int, 0)

	for i, feature := range features {
		entries[i] = models.MapEntry{
			FID:          feature.FID,
			PcName:       feature.Name,
			Party:        OtherParty,
			MarginBucket: GrayBucket,
		}
		idx, ok := pickRow(byKey[feature.JoinKey], rows, feature.StateKey)
		if !ok {
			unmatched = append(unmatched, i)
			continue
		}
		used[idx] = true
		fillEntry(&entries[i], rows[idx])
	}

	if !fuzzyMatch || len(unmatched) == 0 {
		return entries
	}

	for _, i := range unmatched {
		feature := features[i]
		idx, ok := fuzzyRow(feature, rows, used)
		if !ok {
			continue
		}
		used[idx] = true
		fillEntry(&entries[i], rows[idx])
	}
	return entries
}

func pickRow(candidates []int, rows []models.ResultRecord, stateKey string) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	if len(candidates) > 1 && stateKey != "" {
		for _, idx := range candidates {
			if JoinKey(rows[idx].State) == stateKey {
				return idx, true
			}
		}
	}
	return candidates[0], true
}

// fuzzyRow looks for exactly one unused row whose key fuzzily matches the
// feature key in either direction
func fuzzyRow(feature *models.Constituency, rows []models.ResultRecord, used map[int]bool) (int, bool) {
	if feature.JoinKey == "" {
		return 0, false
	}

	keys := make([]string, 0)
	indexes := make([]int, 0)
	for idx, r := range rows {
		if used[idx] || r.JoinKey == "" || r.JoinKey == feature.JoinKey {
			continue
		}
		if feature.StateKey != "" && r.State != "" && JoinKey(r.State) != feature.StateKey {
			continue
		}
		if abs(len(r.JoinKey)-len(feature.JoinKey)) > maxFuzzyLengthGap {
			continue
		}
		keys = append(keys, r.JoinKey)
		indexes = append(indexes, idx)
	}
	if len(keys) == 0 {
		return 0, false
	}

	found := -1
	for _, match := range fuzzy.Find(feature.JoinKey, keys) {
		if found >= 0 && keys[match.Index] != keys[found] {
			return 0, false
		}
		found = match.Index
	}
	for i, key := range keys {
		if len(fuzzy.Find(key, []string{feature.JoinKey})) == 0 {
			continue
		}
		if found >= 0 && keys[found] != key {
			return 0, false
		}
		found = i
	}
	if found < 0 {
		return 0, false
	}
	return indexes[found], true
}

func fillEntry(entry *models.MapEntry, row models.ResultRecord) {
	entry.Party = row.Party
	entry.CandidateName = row.CandidateName
	entry.MarginPct = row.MarginPct
	entry.MarginBucket = row.MarginBucket
	entry.Matched = true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
