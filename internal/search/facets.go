package search

import (
	"sort"
	"strconv"
	"time"

	"github.com/paravault/paravault/internal/models"
)

// Facet types.
const (
	FacetCategory = "category"
	FacetTag      = "tag"
	FacetYear     = "year"
	FacetMonth    = "month"
	FacetRecency  = "recency"
)

// maxTagFacets caps the tag facet at the most frequent tags.
const maxTagFacets = 20

// FacetValue is one counted bucket within a facet.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facet is an aggregated count breakdown of a result set along one
// dimension.
type Facet struct {
	Type   string       `json:"type"`
	Values []FacetValue `json:"values"`
}

// recency buckets, mutually exclusive, ordered nearest first.
var recencyBuckets = []struct {
	name string
	days int
}{
	{"today", 1},
	{"7d", 7},
	{"30d", 30},
	{"90d", 90},
	{"1y", 365},
	{"older", 1 << 30},
}

// GenerateFacets produces category, tag, year, trailing-month and
// relative-date facets for a result set. Facet types with zero
// qualifying documents are omitted entirely.
func GenerateFacets(docs []*models.Document, now time.Time) []Facet {
	var out []Facet
	if f, ok := categoryFacet(docs); ok {
		out = append(out, f)
	}
	if f, ok := tagFacet(docs); ok {
		out = append(out, f)
	}
	if f, ok := yearFacet(docs); ok {
		out = append(out, f)
	}
	if f, ok := monthFacet(docs, now); ok {
		out = append(out, f)
	}
	if f, ok := recencyFacet(docs, now); ok {
		out = append(out, f)
	}
	return out
}

func categoryFacet(docs []*models.Document) (Facet, bool) {
	counts := make(map[string]int)
	for _, d := range docs {
		if d.Category != "" {
			counts[string(d.Category)]++
		}
	}
	if len(counts) == 0 {
		return Facet{}, false
	}
	var values []FacetValue
	for _, c := range models.Categories() {
		if n := counts[string(c)]; n > 0 {
			values = append(values, FacetValue{Value: string(c), Count: n})
		}
	}
	return Facet{Type: FacetCategory, Values: values}, true
}

func tagFacet(docs []*models.Document) (Facet, bool) {
	counts := make(map[string]int)
	for _, d := range docs {
		for _, t := range d.Tags {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return Facet{}, false
	}
	values := make([]FacetValue, 0, len(counts))
	for tag, n := range counts {
		values = append(values, FacetValue{Value: tag, Count: n})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > maxTagFacets {
		values = values[:maxTagFacets]
	}
	return Facet{Type: FacetTag, Values: values}, true
}

func yearFacet(docs []*models.Document) (Facet, bool) {
	counts := make(map[int]int)
	for _, d := range docs {
		if date := d.EffectiveDate(); !date.IsZero() {
			counts[date.Year()]++
		}
	}
	if len(counts) == 0 {
		return Facet{}, false
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	values := make([]FacetValue, 0, len(years))
	for _, y := range years {
		values = append(values, FacetValue{Value: strconv.Itoa(y), Count: counts[y]})
	}
	return Facet{Type: FacetYear, Values: values}, true
}

// monthFacet counts documents over the trailing 12 calendar months,
// newest first; months with no documents are skipped.
func monthFacet(docs []*models.Document, now time.Time) (Facet, bool) {
	counts := make(map[string]int)
	for _, d := range docs {
		if date := d.EffectiveDate(); !date.IsZero() {
			counts[date.Format("2006-01")]++
		}
	}
	var values []FacetValue
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < 12; i++ {
		key := month.Format("2006-01")
		if n := counts[key]; n > 0 {
			values = append(values, FacetValue{Value: key, Count: n})
		}
		month = month.AddDate(0, -1, 0)
	}
	if len(values) == 0 {
		return Facet{}, false
	}
	return Facet{Type: FacetMonth, Values: values}, true
}

// recencyFacet buckets documents by the age of their effective date.
// Buckets are mutually exclusive: each document lands in the nearest
// band whose boundary it falls within.
func recencyFacet(docs []*models.Document, now time.Time) (Facet, bool) {
	counts := make(map[string]int)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, d := range docs {
		date := d.EffectiveDate()
		if date.IsZero() || date.After(now) {
			continue
		}
		if !date.Before(startOfToday) {
			counts["today"]++
			continue
		}
		age := now.Sub(date).Hours() / 24
		for _, b := range recencyBuckets[1:] {
			if age <= float64(b.days) || b.name == "older" {
				counts[b.name]++
				break
			}
		}
	}
	if len(counts) == 0 {
		return Facet{}, false
	}
	var values []FacetValue
	for _, b := range recencyBuckets {
		if n := counts[b.name]; n > 0 {
			values = append(values, FacetValue{Value: b.name, Count: n})
		}
	}
	return Facet{Type: FacetRecency, Values: values}, true
}
