package moments

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

// analysis is the structured contract expected back from the collaborator for
// a day-group of snaps.
type analysis struct {
	Theme            string   `json:"theme"`
	Mood             string   `json:"mood"`
	Significance     float64  `json:"significance"`
	Summary          string   `json:"summary"`
	HighlightCaption string   `json:"highlightCaption"`
	Tags             []string `json:"tags"`
}

func buildAnalysisPrompt(captions string, groupSize int) string {
	var b strings.Builder
	b.WriteString("Two friends shared ")
	fmt.Fprintf(&b, "%d snaps in one day. Their captions, in order: %q.\n", groupSize, captions)
	b.WriteString("Characterize this shared moment. Respond with a single JSON object and nothing else, shaped as:\n")
	b.WriteString(`{"theme":"...","mood":"...","significance":0.0,"summary":"one sentence","highlightCaption":"...","tags":["..."]}` + "\n")
	b.WriteString("significance must be a number between 0 and 1.")
	return b.String()
}

// parseAnalysis extracts the first JSON object from raw and validates it.
// Collaborator responses often wrap the object in prose or code fences.
func parseAnalysis(raw string) (analysis, error) {
	var a analysis
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return a, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &a); err != nil {
		return a, fmt.Errorf("decode analysis: %w", err)
	}
	if a.Theme == "" || a.Summary == "" {
		return a, fmt.Errorf("analysis missing required fields")
	}
	if a.Mood == "" {
		a.Mood = "happy"
	}
	if a.Significance < 0 {
		a.Significance = 0
	}
	if a.Significance > 1 {
		a.Significance = 1
	}
	if a.HighlightCaption == "" {
		a.HighlightCaption = a.Summary
	}
	return a, nil
}

func buildInsightsPrompt(friendName string, st model.FriendshipStats, recentCaptions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are summarizing a friendship for a memories feature. Friend: %s.\n", friendName)
	fmt.Fprintf(&b, "Totals: %d snaps overall, %d this month, %d this week. Trend: %s.\n",
		st.TotalSnaps, st.ThisMonthSnaps, st.ThisWeekSnaps, st.Trend)
	if len(st.RecentMoods) > 0 {
		fmt.Fprintf(&b, "Recent moods: %s.\n", strings.Join(st.RecentMoods, ", "))
	}
	if len(recentCaptions) > 0 {
		fmt.Fprintf(&b, "Recent captions: %q.\n", strings.Join(recentCaptions, " | "))
	}
	b.WriteString("Write exactly 3 short, warm insight sentences about this friendship, one per line, each starting with \"- \".")
	return b.String()
}

// parseInsights accepts bullet or numbered lines and returns the cleaned
// sentences, at most 3.
func parseInsights(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = strings.TrimSpace(strings.TrimLeft(line, "0123456789."))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == 3 {
			break
		}
	}
	return out
}
