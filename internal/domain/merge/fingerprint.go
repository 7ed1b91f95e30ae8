package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/engagehq/pulse/internal/domain/model"
)

// Fingerprint computes a content-addressed key over the three raw inputs of
// a merge. Identical inputs always hash identically regardless of map or
// slice order, so the key is stable across runs. Weights are deliberately
// not part of the key: a weight change never invalidates a merge.
func Fingerprint(profiles map[string]model.Profile, slack, linear []model.SourceCount) string {
	h := sha256.New()

	emails := make([]string, 0, len(profiles))
	for email := range profiles {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	for _, email := range emails {
		p := profiles[email]
		fmt.Fprintf(h, "d|%s|%s|%s|%g|%s\n", email, p.Name, p.Role, p.CapacityHours, p.Avatar)
	}

	writeCounts(h, "s", slack)
	writeCounts(h, "l", linear)

	return hex.EncodeToString(h.Sum(nil))
}

func writeCounts(w io.Writer, tag string, counts []model.SourceCount) {
	sorted := make([]model.SourceCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Email != sorted[j].Email {
			return sorted[i].Email < sorted[j].Email
		}
		return sorted[i].Count < sorted[j].Count
	})
	for _, c := range sorted {
		fmt.Fprintf(w, "%s|%s|%d\n", tag, c.Email, c.Count)
	}
}
