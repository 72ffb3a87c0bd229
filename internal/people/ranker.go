// internal/people/ranker.go

package people

import (
	"database/sql"
	"sort"
	"time"
	"unicode/utf8"
)

// RankCandidates orders merged candidates by recency and truncates to pageSize.
// Order: approval_at DESC nulls last, then updated_at DESC nulls last, then
// id ASC as the total tiebreak. The sort is stable but the id tiebreak alone
// already makes the order deterministic.
func RankCandidates(rows []CandidateRow, pageSize int) []CandidateRow {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareNullTimeDesc(rows[i].ApprovalAt, rows[j].ApprovalAt); c != 0 {
			return c < 0
		}
		if c := compareNullTimeDesc(rows[i].UpdatedAt, rows[j].UpdatedAt); c != 0 {
			return c < 0
		}
		return rows[i].ID < rows[j].ID
	})

	if pageSize > 0 && len(rows) > pageSize {
		rows = rows[:pageSize]
	}
	return rows
}

// compareNullTimeDesc orders valid times newest-first and sorts nulls after
// any valid time. Returns <0 when a ranks before b.
func compareNullTimeDesc(a, b sql.NullTime) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid && !b.Valid:
		return 0
	case a.Time.After(b.Time):
		return -1
	case b.Time.After(a.Time):
		return 1
	}
	return 0
}

// Shape converts a ranked candidate row into the public card.
func Shape(row CandidateRow, now time.Time) Person {
	p := Person{ID: row.ID}

	if row.AvatarURL.Valid {
		v := row.AvatarURL.String
		p.AvatarURL = &v
	}
	if row.Name.Valid {
		v := row.Name.String
		p.Name = &v
	}
	if row.DOB.Valid {
		age := deriveAge(row.DOB.Time, now)
		p.Age = &age
	}
	if row.Bio.Valid {
		v := snippet(row.Bio.String, bioSnippetLen)
		p.BioSnippet = &v
	}

	return p
}

// snippet truncates to at most n characters, counting runes so a multibyte
// biography is never cut mid-character.
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
