// Package moments groups a friendship's recent events into shared moments and
// asks the generation collaborator to characterize each group. Every
// collaborator call has a deterministic local fallback so a generation outage
// degrades content quality, never availability.
package moments

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keepsakelabs/keepsake-memory/internal/collab"
	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

const (
	// MinPairEvents is the clustering precondition; fewer events leave the
	// existing timeline untouched.
	MinPairEvents = 3
	// RecentEventWindow bounds how much history is reconsidered per recluster.
	RecentEventWindow = 20
	// minDayGroupSize: a single snap never forms a moment.
	minDayGroupSize = 2
	// HighlightThreshold marks the significance cutoff for timeline highlights.
	HighlightThreshold = 0.7

	fallbackSignificance = 0.6
)

// Engine clusters events and narrates them via the collaborator.
type Engine struct {
	collab collab.Collaborator
	log    zerolog.Logger
	newID  func() string
}

func NewEngine(c collab.Collaborator, log zerolog.Logger) *Engine {
	return &Engine{collab: c, log: log, newID: uuid.NewString}
}

// BuildMoments groups events by calendar day, characterizes each qualifying
// group and returns the moments most-significant-first. The input is expected
// to be the pair's recent window, oldest first.
func (e *Engine) BuildMoments(ctx context.Context, ownerID, friendID string, events []model.SnapEvent) []model.SharedMoment {
	byDay := make(map[string][]model.SnapEvent)
	var dayOrder []string
	for _, ev := range events {
		// event timestamp as given, no timezone normalization
		day := ev.Timestamp.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] = append(byDay[day], ev)
	}

	var out []model.SharedMoment
	for _, day := range dayOrder {
		group := byDay[day]
		if len(group) < minDayGroupSize {
			continue
		}
		out = append(out, e.characterize(ctx, ownerID, friendID, group))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Significance > out[j].Significance
	})
	return out
}

// Highlights returns the subset of moments whose significance exceeds the
// highlight threshold. Moments are assumed sorted already.
func Highlights(ms []model.SharedMoment) []model.SharedMoment {
	var out []model.SharedMoment
	for _, m := range ms {
		if m.Significance > HighlightThreshold {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) characterize(ctx context.Context, ownerID, friendID string, group []model.SnapEvent) model.SharedMoment {
	captions := collectCaptions(group)
	joined := strings.Join(captions, " ")

	m := model.SharedMoment{
		MomentID:     e.newID(),
		Participants: []string{ownerID, friendID},
		Events:       group,
		StartTime:    group[0].Timestamp,
		Location:     firstLocation(group),
	}

	analysis, src := e.analyze(ctx, joined, len(group))
	m.Theme = analysis.Theme
	m.Mood = analysis.Mood
	m.Significance = analysis.Significance
	m.Summary = analysis.Summary
	m.Highlight = analysis.HighlightCaption
	m.Tags = analysis.Tags
	m.Source = src
	return m
}

// analyze requests the structured characterization, falling back to the
// deterministic default on call or parse failure.
func (e *Engine) analyze(ctx context.Context, captions string, groupSize int) (analysis, model.AnalysisSource) {
	prompt := buildAnalysisPrompt(captions, groupSize)
	raw, err := e.collab.Generate(ctx, prompt, "moment-analysis")
	if err != nil {
		e.log.Warn().Err(err).Msg("moment analysis unavailable, using fallback")
		return fallbackAnalysis(captions, groupSize), model.SourceFallback
	}
	a, err := parseAnalysis(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("raw", raw).Msg("moment analysis unparsable, using fallback")
		return fallbackAnalysis(captions, groupSize), model.SourceFallback
	}
	return a, model.SourceModel
}

// BuildInsights asks the collaborator for a short narrative bullet list about
// the friendship, with a templated three-sentence fallback.
func (e *Engine) BuildInsights(ctx context.Context, friendName string, st model.FriendshipStats, recentCaptions []string) ([]string, model.AnalysisSource) {
	if len(recentCaptions) > 5 {
		recentCaptions = recentCaptions[len(recentCaptions)-5:]
	}
	prompt := buildInsightsPrompt(friendName, st, recentCaptions)
	raw, err := e.collab.Generate(ctx, prompt, "friendship-insights")
	if err != nil {
		e.log.Warn().Err(err).Msg("insight generation unavailable, using fallback")
		return fallbackInsights(friendName, st), model.SourceFallback
	}
	lines := parseInsights(raw)
	if len(lines) == 0 {
		e.log.Warn().Str("raw", raw).Msg("insight response unparsable, using fallback")
		return fallbackInsights(friendName, st), model.SourceFallback
	}
	return lines, model.SourceModel
}

func collectCaptions(group []model.SnapEvent) []string {
	var out []string
	for _, ev := range group {
		if ev.Caption != "" {
			out = append(out, ev.Caption)
		}
	}
	return out
}

func firstLocation(group []model.SnapEvent) string {
	for _, ev := range group {
		if ev.Location != "" {
			return ev.Location
		}
	}
	return ""
}

// fallbackAnalysis is the deterministic default used when the collaborator
// fails or returns something unparsable.
func fallbackAnalysis(captions string, groupSize int) analysis {
	highlight := firstWords(captions, 10)
	if highlight == "" {
		highlight = "Fun moment together"
	}
	return analysis{
		Theme:            "Friendship Moment",
		Mood:             "happy",
		Significance:     fallbackSignificance,
		Summary:          fmt.Sprintf("Shared %d snaps together", groupSize),
		HighlightCaption: highlight,
		Tags:             []string{"friendship", "memories"},
	}
}

func fallbackInsights(friendName string, st model.FriendshipStats) []string {
	mood := "happy"
	if len(st.RecentMoods) > 0 {
		mood = st.RecentMoods[0]
	}
	var trendLine string
	switch st.Trend {
	case model.TrendGrowing:
		trendLine = fmt.Sprintf("Your friendship with %s is more active than usual lately.", friendName)
	case model.TrendDeclining:
		trendLine = fmt.Sprintf("You and %s have been snapping less than usual recently.", friendName)
	default:
		trendLine = fmt.Sprintf("You and %s keep a steady snapping rhythm.", friendName)
	}
	return []string{
		fmt.Sprintf("You have shared %d snaps with %s so far.", st.TotalSnaps, friendName),
		trendLine,
		fmt.Sprintf("Your recent snaps together have mostly felt %s.", mood),
	}
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
