package ecb

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

// CurrencyDimension is the structure dimension whose values name currencies.
const CurrencyDimension = "CURRENCY"

// dataResponse is the subset of the SDMX-JSON data message the parser reads.
type dataResponse struct {
	DataSets  []dataSet `json:"dataSets"`
	Structure structure `json:"structure"`
}

type dataSet struct {
	Series map[string]series `json:"series"`
}

type series struct {
	Observations map[string][]*float64 `json:"observations"`
}

type structure struct {
	Dimensions struct {
		Series []dimension `json:"series"`
	} `json:"dimensions"`
}

type dimension struct {
	ID     string           `json:"id"`
	Values []dimensionValue `json:"values"`
}

type dimensionValue struct {
	ID string `json:"id"`
}

// Parse decodes a data message and normalizes it into a snapshot captured at now.
func Parse(r io.Reader, now time.Time) (rate.Snapshot, error) {
	var resp dataResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return rate.Snapshot{}, fmt.Errorf("%w: decode data message: %w", rate.ErrMalformedResponse, err)
	}
	return parse(resp, now)
}

// seriesKeyLayout maps series-key segments to the currency dimension.
type seriesKeyLayout struct {
	position   int
	currencies []dimensionValue
}

func newSeriesKeyLayout(s structure) (seriesKeyLayout, error) {
	positions := make(map[string]int, len(s.Dimensions.Series))
	for i, d := range s.Dimensions.Series {
		if _, seen := positions[d.ID]; !seen {
			positions[d.ID] = i
		}
	}

	pos, ok := positions[CurrencyDimension]
	if !ok {
		return seriesKeyLayout{}, fmt.Errorf("%w: %s dimension not found", rate.ErrMalformedResponse, CurrencyDimension)
	}
	return seriesKeyLayout{
		position:   pos,
		currencies: s.Dimensions.Series[pos].Values,
	}, nil
}

// currency resolves the currency value index and code selected by a series key.
func (l seriesKeyLayout) currency(key string) (int, string, bool) {
	parts := strings.Split(key, ":")
	if len(parts) <= l.position {
		return 0, "", false
	}
	idx, err := strconv.Atoi(parts[l.position])
	if err != nil || idx < 0 || idx >= len(l.currencies) {
		return 0, "", false
	}
	code := l.currencies[idx].ID
	if code == "" {
		return 0, "", false
	}
	return idx, code, true
}

func parse(resp dataResponse, now time.Time) (rate.Snapshot, error) {
	if len(resp.DataSets) == 0 {
		return rate.Snapshot{}, fmt.Errorf("%w: no data sets found", rate.ErrMalformedResponse)
	}
	ds := resp.DataSets[0]

	layout, err := newSeriesKeyLayout(resp.Structure)
	if err != nil {
		return rate.Snapshot{}, err
	}

	type indexedRate struct {
		idx int
		rate.Rate
	}

	keys := make([]string, 0, len(ds.Series))
	for k := range ds.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	collected := make([]indexedRate, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		idx, code, ok := layout.currency(key)
		if !ok || seen[code] {
			continue
		}
		value, ok := firstObservation(ds.Series[key])
		if !ok {
			continue
		}
		seen[code] = true
		collected = append(collected, indexedRate{idx: idx, Rate: rate.Rate{Currency: code, Rate: value}})
	}

	sort.SliceStable(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })

	rates := make([]rate.Rate, len(collected))
	for i, c := range collected {
		rates[i] = c.Rate
	}

	return rate.Snapshot{Rates: rates, Timestamp: now.UTC()}, nil
}

// firstObservation returns the value of the earliest observation period.
func firstObservation(s series) (float64, bool) {
	if len(s.Observations) == 0 {
		return 0, false
	}

	periods := make([]string, 0, len(s.Observations))
	for p := range s.Observations {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periodLess(periods[i], periods[j]) })

	obs := s.Observations[periods[0]]
	if len(obs) == 0 || obs[0] == nil {
		return 0, false
	}
	v := *obs[0]
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// periodLess orders observation period labels numerically when both are
// indices, lexically otherwise.
func periodLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
