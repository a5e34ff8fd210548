package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

func newClient(base string) *resty.Client {
	return resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json")
}

func runSnap(base, sender, recipient, caption, mood, location string, out io.Writer) error {
	resp, err := newClient(base).R().
		SetBody(map[string]string{
			"senderId":    sender,
			"recipientId": recipient,
			"caption":     caption,
			"mood":        mood,
			"location":    location,
		}).
		Post("/api/snaps")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("ingest failed: %d %s", resp.StatusCode(), resp.String())
	}
	fmt.Fprintln(out, "snap ingested")
	return nil
}

func runTimeline(base, user, friend string, out io.Writer) error {
	resp, err := newClient(base).R().
		Get(fmt.Sprintf("/api/users/%s/friends/%s/timeline", user, friend))
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		fmt.Fprintln(out, "no timeline yet; snap more together")
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("timeline failed: %d %s", resp.StatusCode(), resp.String())
	}

	var tl model.FriendshipTimeline
	if err := json.Unmarshal(resp.Body(), &tl); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s and %s: %d snaps, trend %s\n", tl.OwnerID, tl.FriendName, tl.Stats.TotalSnaps, tl.Stats.Trend)
	for _, m := range tl.Moments {
		fmt.Fprintf(out, "  [%.2f] %s (%s): %s\n", m.Significance, m.Theme, m.StartTime.Format("2006-01-02"), m.Summary)
	}
	for _, ins := range tl.Insights {
		fmt.Fprintf(out, "  * %s\n", ins)
	}
	return nil
}

func runFriendships(base, user string, out io.Writer) error {
	resp, err := newClient(base).R().
		Get(fmt.Sprintf("/api/users/%s/friendships", user))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("friendships failed: %d %s", resp.StatusCode(), resp.String())
	}

	var body struct {
		Friendships []model.FriendshipStats `json:"friendships"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return err
	}
	for _, st := range body.Friendships {
		fmt.Fprintf(out, "%-20s total=%-5d week=%-3d trend=%s\n", st.FriendID, st.TotalSnaps, st.ThisWeekSnaps, st.Trend)
	}
	return nil
}

func runSearch(base, user, friend, query string, out io.Writer) error {
	resp, err := newClient(base).R().
		SetBody(map[string]string{"query": query, "userId": user, "friendId": friend}).
		Post("/api/search")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("search failed: %d %s", resp.StatusCode(), resp.String())
	}

	var body struct {
		Moments []model.SharedMoment `json:"moments"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return err
	}
	if len(body.Moments) == 0 {
		fmt.Fprintln(out, "no matching moments")
		return nil
	}
	for _, m := range body.Moments {
		fmt.Fprintf(out, "[%.2f] %s: %s\n", m.Significance, m.Theme, m.Summary)
	}
	return nil
}

func runPatterns(base, user string, out io.Writer) error {
	resp, err := newClient(base).R().
		Get(fmt.Sprintf("/api/users/%s/patterns", user))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("patterns failed: %d %s", resp.StatusCode(), resp.String())
	}

	var p model.TrendingPatterns
	if err := json.Unmarshal(resp.Body(), &p); err != nil {
		return err
	}
	fmt.Fprintf(out, "most active: %s\n", p.MostActiveTime)
	fmt.Fprintf(out, "favorite activity: %s\n", p.FavoriteActivity)
	fmt.Fprintf(out, "growing friendships: %v\n", p.GrowingFriendships)
	fmt.Fprintf(out, "common moods: %v\n", p.CommonMoods)
	return nil
}
