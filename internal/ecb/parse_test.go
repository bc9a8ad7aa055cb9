package ecb

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

var parsedAt = time.Date(2024, 6, 10, 15, 5, 0, 0, time.UTC)

const samplePayload = `{
  "header": {"id": "abc", "test": false},
  "dataSets": [{
    "action": "Replace",
    "series": {
      "0:0:0:0:0": {"attributes": [0, null], "observations": {"0": [1.6235, 0, 0, null, null]}},
      "0:1:0:0:0": {"observations": {"0": [1.0812, 0, 0, null, null]}},
      "0:2:0:0:0": {"observations": {"0": [null, 0, 0]}},
      "0:3:0:0:0": {"observations": {}},
      "0:4:0:0:0": {"observations": {"0": [170.25, 0, 0]}},
      "0:9:0:0:0": {"observations": {"0": [5.0]}},
      "0:x:0:0:0": {"observations": {"0": [2.0]}},
      "nokey": {"observations": {"0": [3.0]}},
      "1:1:0:0:0": {"observations": {"0": [99.0]}}
    }
  }],
  "structure": {
    "dimensions": {
      "series": [
        {"id": "FREQ", "values": [{"id": "D"}, {"id": "M"}]},
        {"id": "CURRENCY", "values": [{"id": "AUD"}, {"id": "USD"}, {"id": "BGN"}, {"id": "GBP"}, {"id": "JPY"}]},
        {"id": "CURRENCY_DENOM", "values": [{"id": "EUR"}]},
        {"id": "EXR_TYPE", "values": [{"id": "SP00"}]},
        {"id": "EXR_SUFFIX", "values": [{"id": "A"}]}
      ],
      "observation": [{"id": "TIME_PERIOD", "values": [{"id": "2024-06-10"}]}]
    }
  }
}`

func TestParse(t *testing.T) {
	snap, err := Parse(strings.NewReader(samplePayload), parsedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []rate.Rate{
		{Currency: "AUD", Rate: 1.6235},
		{Currency: "USD", Rate: 1.0812},
		{Currency: "JPY", Rate: 170.25},
	}
	if len(snap.Rates) != len(want) {
		t.Fatalf("expected %d rates, got %d: %+v", len(want), len(snap.Rates), snap.Rates)
	}
	for i, w := range want {
		if snap.Rates[i] != w {
			t.Errorf("rate %d: got %+v, want %+v", i, snap.Rates[i], w)
		}
	}
	if !snap.Timestamp.Equal(parsedAt) {
		t.Errorf("expected timestamp %s, got %s", parsedAt, snap.Timestamp)
	}
}

func TestParse_NoDuplicateCurrencies(t *testing.T) {
	snap, err := Parse(strings.NewReader(samplePayload), parsedAt)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, r := range snap.Rates {
		if seen[r.Currency] {
			t.Errorf("duplicate currency %s", r.Currency)
		}
		seen[r.Currency] = true
		if r.Rate < 0 {
			t.Errorf("negative rate for %s", r.Currency)
		}
	}
	if seen["EUR"] {
		t.Error("base currency must not be listed")
	}
}

func TestParse_CurrencyDimensionPosition(t *testing.T) {
	payload := `{
	  "dataSets": [{"series": {
	    "1:0": {"observations": {"0": [1.08]}},
	    "0:0": {"observations": {"0": [160.5]}}
	  }}],
	  "structure": {"dimensions": {"series": [
	    {"id": "CURRENCY", "values": [{"id": "JPY"}, {"id": "USD"}]},
	    {"id": "FREQ", "values": [{"id": "D"}]}
	  ]}}
	}`

	snap, err := Parse(strings.NewReader(payload), parsedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(snap.Rates))
	}
	if r, _ := snap.Lookup("USD"); r != 1.08 {
		t.Errorf("expected USD 1.08, got %f", r)
	}
	if r, _ := snap.Lookup("JPY"); r != 160.5 {
		t.Errorf("expected JPY 160.5, got %f", r)
	}
}

func TestParse_FirstObservationPeriod(t *testing.T) {
	payload := `{
	  "dataSets": [{"series": {
	    "0:0": {"observations": {"10": [3.0], "2": [2.0], "1": [1.5]}}
	  }}],
	  "structure": {"dimensions": {"series": [
	    {"id": "FREQ", "values": [{"id": "D"}]},
	    {"id": "CURRENCY", "values": [{"id": "USD"}]}
	  ]}}
	}`

	snap, err := Parse(strings.NewReader(payload), parsedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Rates) != 1 || snap.Rates[0].Rate != 1.5 {
		t.Errorf("expected USD 1.5 from period 1, got %+v", snap.Rates)
	}
}

func TestParse_SkipsNegativeObservations(t *testing.T) {
	payload := `{
	  "dataSets": [{"series": {
	    "0:0": {"observations": {"0": [-1.0]}},
	    "0:1": {"observations": {"0": [0.85]}}
	  }}],
	  "structure": {"dimensions": {"series": [
	    {"id": "FREQ", "values": [{"id": "D"}]},
	    {"id": "CURRENCY", "values": [{"id": "USD"}, {"id": "GBP"}]}
	  ]}}
	}`

	snap, err := Parse(strings.NewReader(payload), parsedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Rates) != 1 || snap.Rates[0].Currency != "GBP" {
		t.Errorf("expected only GBP, got %+v", snap.Rates)
	}
}

func TestParse_EmptySeries(t *testing.T) {
	payload := `{
	  "dataSets": [{"series": {}}],
	  "structure": {"dimensions": {"series": [{"id": "CURRENCY", "values": []}]}}
	}`
	snap, err := Parse(strings.NewReader(payload), parsedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Rates) != 0 {
		t.Errorf("expected no rates, got %d", len(snap.Rates))
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "no data sets",
			payload: `{"dataSets": [], "structure": {"dimensions": {"series": [{"id": "CURRENCY", "values": [{"id": "USD"}]}]}}}`,
		},
		{
			name:    "missing data sets",
			payload: `{"structure": {"dimensions": {"series": [{"id": "CURRENCY", "values": [{"id": "USD"}]}]}}}`,
		},
		{
			name:    "no currency dimension",
			payload: `{"dataSets": [{"series": {"0:0": {"observations": {"0": [1.0]}}}}], "structure": {"dimensions": {"series": [{"id": "FREQ", "values": [{"id": "D"}]}]}}}`,
		},
		{
			name:    "not json",
			payload: `<html>maintenance</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.payload), parsedAt)
			if !errors.Is(err, rate.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestSeriesKeyLayout(t *testing.T) {
	layout := seriesKeyLayout{
		position:   1,
		currencies: []dimensionValue{{ID: "AUD"}, {ID: "USD"}},
	}

	tests := []struct {
		key    string
		wantOK bool
		want   string
	}{
		{"0:1:0:0:0", true, "USD"},
		{"0:0", true, "AUD"},
		{"0", false, ""},
		{"", false, ""},
		{"0:a:0", false, ""},
		{"0:2:0", false, ""},
		{"0:-1:0", false, ""},
	}
	for _, tt := range tests {
		_, got, ok := layout.currency(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("currency(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
