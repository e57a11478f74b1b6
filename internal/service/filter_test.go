package service

import (
	"strings"
	"testing"

	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraceScanner(t *testing.T) {
	tests := []struct {
		name   string
		deltas []string
		want   string
	}{
		{
			name:   "single chunk",
			deltas: []string{`Try this {"grape":"Malbec"} tonight`},
			want:   `{"grape":"Malbec"}`,
		},
		{
			name:   "split across chunks",
			deltas: []string{"Try a red. {", `"grape":`, `"Mal`, `bec"`, "} enjoy"},
			want:   `{"grape":"Malbec"}`,
		},
		{
			name:   "close brace before open is ignored",
			deltas: []string{"} nothing yet ", `{"region":"Rioja"}`},
			want:   `{"region":"Rioja"}`,
		},
		{
			name:   "first pair wins",
			deltas: []string{`{"grape":"Malbec"} and later {"grape":"Merlot"}`},
			want:   `{"grape":"Malbec"}`,
		},
		{
			name:   "stops at first close brace",
			deltas: []string{`{"a":{"b":1}}`},
			want:   `{"a":{"b":1}`,
		},
		{
			name:   "no braces",
			deltas: []string{"A lovely ", "Malbec."},
			want:   "",
		},
		{
			name:   "unclosed",
			deltas: []string{`{"grape":"Malbec"`},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBraceScanner()
			for _, d := range tt.deltas {
				s.Feed(d)
			}
			assert.Equal(t, tt.want, s.Candidate())
			assert.Equal(t, tt.want != "", s.Done())
		})
	}
}

func TestBraceScanner_EveryChunkBoundary(t *testing.T) {
	text := `Pair it with steak. {"grape":"Malbec","country":"Argentina"} Cheers!`
	for split := 0; split <= len(text); split++ {
		s := NewBraceScanner()
		s.Feed(text[:split])
		s.Feed(text[split:])
		require.Equal(t, `{"grape":"Malbec","country":"Argentina"}`, s.Candidate(), "split at %d", split)
	}
}

func TestExtractFilter(t *testing.T) {
	tests := []struct {
		name        string
		fullText    string
		want        types.ModelFilter
		wantOutcome string
	}{
		{
			name:        "sentinel object",
			fullText:    "A Malbec suits steak.\nFILTERS: {\"grape\":\"Malbec\",\"food\":\"steak\"}",
			want:        types.ModelFilter{Grape: "Malbec", Food: "steak"},
			wantOutcome: FilterFromSentinel,
		},
		{
			name:        "sentinel with nested value is rejected by schema",
			fullText:    `Note {this}. FILTERS: {"grape":{"name":"Malbec"}}`,
			want:        types.ModelFilter{},
			wantOutcome: FilterInvalid,
		},
		{
			name:        "last sentinel wins",
			fullText:    "FILTERS: {\"grape\":\"Merlot\"}\nOn reflection:\nFILTERS: {\"grape\":\"Malbec\"}",
			want:        types.ModelFilter{Grape: "Malbec"},
			wantOutcome: FilterFromSentinel,
		},
		{
			name:        "brace scan fallback",
			fullText:    `I suggest {"wine_type":"Red","year":"2019"} for dinner`,
			want:        types.ModelFilter{WineType: "Red", Year: 2019},
			wantOutcome: FilterFromScan,
		},
		{
			name:        "appelation alias",
			fullText:    `FILTERS: {"appelation":"Rioja DOCa"}`,
			want:        types.ModelFilter{Appellation: "Rioja DOCa"},
			wantOutcome: FilterFromSentinel,
		},
		{
			name:        "no json",
			fullText:    "Any crisp white will do.",
			want:        types.ModelFilter{},
			wantOutcome: FilterNone,
		},
		{
			name:        "malformed scan",
			fullText:    "Use {grape: Malbec} here",
			want:        types.ModelFilter{},
			wantOutcome: FilterInvalid,
		},
		{
			name:        "wrong type",
			fullText:    `FILTERS: {"grape": 12}`,
			want:        types.ModelFilter{},
			wantOutcome: FilterInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBraceScanner()
			s.Feed(tt.fullText)

			got, outcome := ExtractFilter(tt.fullText, s.Candidate())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOutcome, outcome)
		})
	}
}

func TestParseModelFilter_UnknownKeysIgnored(t *testing.T) {
	f, err := ParseModelFilter([]byte(`{"grape":"Malbec","mood":"festive","pairing":"steak"}`))
	require.NoError(t, err)
	assert.Equal(t, types.ModelFilter{Grape: "Malbec"}, f)
}

func TestBuildSommelierPrompt(t *testing.T) {
	rating := 4.5
	probe := []types.EnrichedWine{{}}
	probe[0].ID = 7
	probe[0].Name = "Catena Malbec"
	probe[0].Rating = &rating

	prompt := BuildSommelierPrompt(probe)
	assert.Contains(t, prompt, "- Catena Malbec (ID: 7)")
	assert.Contains(t, prompt, FilterSentinel)

	empty := BuildSommelierPrompt(nil)
	assert.True(t, strings.Contains(empty, noProbeMatches))
}
