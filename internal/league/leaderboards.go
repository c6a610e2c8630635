package league

import "sort"

// ComputeTopScorers sums goal events per player across finalized matches and
// returns the top limit players with at least one goal, goals descending.
//
// When no finalized match carries goal-event detail the stored per-player
// counters are used instead, so leagues tracked without per-goal attribution
// still get a leaderboard.
func ComputeTopScorers(players []Player, matches []Match, limit int) []Player {
	goals := make(map[string]int)
	haveEvents := false
	for _, m := range matches {
		if !m.Finalized {
			continue
		}
		for _, g := range m.Scorers {
			haveEvents = true
			goals[g.PlayerID] += g.Count
		}
	}

	scorers := make([]Player, 0, len(players))
	for _, p := range players {
		if haveEvents {
			p.Goals = goals[p.ID]
		}
		if p.Goals > 0 {
			scorers = append(scorers, p)
		}
	}

	sort.SliceStable(scorers, func(i, j int) bool {
		return scorers[i].Goals > scorers[j].Goals
	})
	return truncate(scorers, limit)
}

// ComputeCardTable counts yellow and red card events per player across
// finalized matches and ranks by weighted score red*2 + yellow, reds breaking
// ties. A player listed twice received two cards; entries are not deduped.
func ComputeCardTable(players []Player, matches []Match, limit int) []CardRow {
	type tally struct{ yellow, red int }
	cards := make(map[string]*tally)
	haveEvents := false
	add := func(id string, red bool) {
		haveEvents = true
		t := cards[id]
		if t == nil {
			t = &tally{}
			cards[id] = t
		}
		if red {
			t.red++
		} else {
			t.yellow++
		}
	}
	for _, m := range matches {
		if !m.Finalized {
			continue
		}
		for _, id := range m.YellowCards {
			add(id, false)
		}
		for _, id := range m.RedCards {
			add(id, true)
		}
	}

	rows := make([]CardRow, 0, len(players))
	for _, p := range players {
		if haveEvents {
			t := cards[p.ID]
			if t == nil {
				p.YellowCards, p.RedCards = 0, 0
			} else {
				p.YellowCards, p.RedCards = t.yellow, t.red
			}
		}
		if p.YellowCards > 0 || p.RedCards > 0 {
			rows = append(rows, CardRow{
				Player:     p,
				CardPoints: p.RedCards*2 + p.YellowCards,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CardPoints != b.CardPoints {
			return a.CardPoints > b.CardPoints
		}
		return a.RedCards > b.RedCards
	})
	return truncate(rows, limit)
}

// ComputeKeeperTable ranks goalkeepers by average goals conceded per match,
// best average first. Team goals-against stands in for keeper-level data;
// keepers whose team has not played are excluded.
func ComputeKeeperTable(players []Player, matches []Match) []KeeperRow {
	type teamTally struct{ played, conceded, cleanSheets int }
	byTeam := make(map[string]*teamTally)
	tallyFor := func(id string) *teamTally {
		t := byTeam[id]
		if t == nil {
			t = &teamTally{}
			byTeam[id] = t
		}
		return t
	}
	for _, m := range matches {
		if !m.Finalized {
			continue
		}
		home := tallyFor(m.HomeTeamID)
		away := tallyFor(m.AwayTeamID)
		home.played++
		away.played++
		home.conceded += m.AwayGoals
		away.conceded += m.HomeGoals
		if m.AwayGoals == 0 {
			home.cleanSheets++
		}
		if m.HomeGoals == 0 {
			away.cleanSheets++
		}
	}

	rows := make([]KeeperRow, 0)
	for _, p := range players {
		if p.Position != Goalkeeper {
			continue
		}
		t := byTeam[p.TeamID]
		if t == nil || t.played == 0 {
			continue
		}
		rows = append(rows, KeeperRow{
			Player:        p,
			MatchesPlayed: t.played,
			GoalsConceded: t.conceded,
			CleanSheets:   t.cleanSheets,
			AvgConceded:   float64(t.conceded) / float64(t.played),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.AvgConceded != b.AvgConceded {
			return a.AvgConceded < b.AvgConceded
		}
		return a.CleanSheets > b.CleanSheets
	})
	return rows
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
