package app

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"guestreviews/internal/domain"
)

var titleCaser = cases.Title(language.English)

func round1(f float64) float64 { return math.Round(f*10) / 10 }

// categoryLabel turns "respect_house_rules" into "Respect House Rules".
func categoryLabel(category string) string {
	return titleCaser.String(strings.ReplaceAll(category, "_", " "))
}

func computeStats(rs []domain.Review) domain.ReviewStats {
	st := domain.ReviewStats{CategoryAverages: []domain.CategoryAverage{}}
	if len(rs) == 0 {
		return st
	}

	type acc struct{ total, count int }
	perCat := map[string]*acc{}
	total := 0.0
	for _, rv := range rs {
		total += rv.OverallRating
		if rv.IsApproved {
			st.ApprovedReviews++
		}
		for _, c := range rv.CategoryRatings {
			if c.Category == "" {
				continue
			}
			a, ok := perCat[c.Category]
			if !ok {
				a = &acc{}
				perCat[c.Category] = a
			}
			a.total += c.Rating
			a.count++
		}
	}
	st.TotalReviews = len(rs)
	st.AverageRating = round1(total / float64(len(rs)))

	names := make([]string, 0, len(perCat))
	for k := range perCat {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, n := range names {
		a := perCat[n]
		st.CategoryAverages = append(st.CategoryAverages, domain.CategoryAverage{
			Category: n,
			Label:    categoryLabel(n),
			Average:  round1(float64(a.total) / float64(a.count)),
		})
	}
	return st
}
