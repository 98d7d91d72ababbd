package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestExtractAwardedPoints(t *testing.T) {
	tests := []struct {
		name       string
		raw        *string
		wantPoints float64
		wantParsed bool
	}{
		{
			name:       "plain JSON object",
			raw:        strPtr(`{"awarded_points": 7}`),
			wantPoints: 7,
			wantParsed: true,
		},
		{
			name:       "fractional points",
			raw:        strPtr(`{"awarded_points": 7.5, "feedback": "gut"}`),
			wantPoints: 7.5,
			wantParsed: true,
		},
		{
			name:       "object wrapped in prose",
			raw:        strPtr("Hier ist meine Bewertung:\n```json\n{\"awarded_points\": 3}\n```\nViel Erfolg!"),
			wantPoints: 3,
			wantParsed: true,
		},
		{
			name:       "nested object balances",
			raw:        strPtr(`{"detail": {"reason": "ok"}, "awarded_points": 4}`),
			wantPoints: 4,
			wantParsed: true,
		},
		{
			name:       "braces inside strings are ignored",
			raw:        strPtr(`{"feedback": "use {x} here", "awarded_points": 2}`),
			wantPoints: 2,
			wantParsed: true,
		},
		{name: "nil payload", raw: nil},
		{name: "no object at all", raw: strPtr("keine Punkte")},
		{name: "unbalanced braces", raw: strPtr(`{"awarded_points": 7`)},
		{name: "malformed JSON", raw: strPtr(`{awarded_points: 7}`)},
		{name: "missing field", raw: strPtr(`{"points": 7}`)},
		{name: "non-numeric field", raw: strPtr(`{"awarded_points": "sieben"}`)},
		{name: "null field", raw: strPtr(`{"awarded_points": null}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ExtractAwardedPoints(tt.raw)
			assert.Equal(t, tt.wantParsed, score.Parsed)
			if tt.wantParsed {
				assert.Equal(t, tt.wantPoints, score.Points)
				assert.Empty(t, score.Reason)
			} else {
				assert.NotEmpty(t, score.Reason)
			}
		})
	}
}
