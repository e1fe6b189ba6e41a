package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSONArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare array", `[{"title":"x"}]`, `[{"title":"x"}]`, true},
		{"code fence", "```json\n[{\"title\":\"x\"}]\n```", `[{"title":"x"}]`, true},
		{"prose wrapped", `Here are the events: [{"title":"x"}] hope that helps!`, `[{"title":"x"}]`, true},
		{"no array at all", "I could not find any events.", "", false},
		{"brackets reversed", "] nothing [", "", false},
	}
	for _, tc := range cases {
		got, ok := RepairJSONArray(tc.in)
		assert.Equal(t, tc.ok, ok, tc.name)
		if ok {
			assert.Equal(t, tc.want, got, tc.name)
		}
	}
}

func TestParseCandidatesStrict(t *testing.T) {
	raw := []byte(`[
		{"title":"Team Practice","start_time":"2026-09-01T09:00:00","end_time":"2026-09-01T11:00:00","category":"practice","all_day":false},
		{"title":"Season Opener","start_time":"2026-09-05","all_day":true}
	]`)
	got, err := ParseCandidates(raw, 0, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Team Practice", got[0].Title)
	assert.Equal(t, "2026-09-05", got[1].StartTime)
	assert.True(t, got[1].AllDay)
}

func TestParseCandidatesRepairsWrappedResponse(t *testing.T) {
	raw := []byte("Sure! Here is the schedule:\n```json\n[{\"title\":\"Game\",\"start_time\":\"2026-10-01T19:00:00\"}]\n```")
	got, err := ParseCandidates(raw, 0, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Game", got[0].Title)
}

func TestParseCandidatesUnusableAfterRepair(t *testing.T) {
	_, err := ParseCandidates([]byte("no events here, sorry"), 0, nil)
	require.Error(t, err)

	_, err = ParseCandidates([]byte(`[{"title": broken}]`), 0, nil)
	require.Error(t, err)
}

func TestParseCandidatesDropsSchemaViolations(t *testing.T) {
	// all_day must be a boolean; the middle candidate is dropped, not fatal
	raw := []byte(`[
		{"title":"A","start_time":"2026-09-01T09:00:00"},
		{"title":"B","start_time":"2026-09-02T09:00:00","all_day":"yes"},
		{"title":"C","start_time":"2026-09-03T09:00:00"}
	]`)
	got, err := ParseCandidates(raw, 0, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}

func TestParseCandidatesIgnoresModelSuppliedIds(t *testing.T) {
	raw := []byte(`[{"uid":"model-made-this-up","id":7,"title":"A","start_time":"2026-09-01T09:00:00"}]`)
	got, err := ParseCandidates(raw, 0, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestParseCandidatesTruncatesRunawayResponse(t *testing.T) {
	type c struct {
		Title     string `json:"title"`
		StartTime string `json:"start_time"`
	}
	many := make([]c, 50)
	for i := range many {
		many[i] = c{Title: "E", StartTime: "2026-09-01T09:00:00"}
	}
	raw, err := json.Marshal(many)
	require.NoError(t, err)

	got, err := ParseCandidates(raw, 10, nil)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestBuildUserPromptCapsText(t *testing.T) {
	long := make([]byte, 20000)
	for i := range long {
		long[i] = 'a'
	}
	req := StructureRequest{Text: string(long), SourceLabel: "text file"}
	out := BuildUserPrompt(req, false)
	assert.LessOrEqual(t, len(out), defaultMaxTextChars+200)

	withImage := BuildUserPrompt(StructureRequest{Text: "", SourceLabel: "image/schedule"}, true)
	assert.Contains(t, withImage, "No OCR text available")
}
