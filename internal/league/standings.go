package league

import "sort"

// ComputeStandings derives the league table from the given teams and the
// finalized subset of matches. It is a pure function: standings are always
// recomputed from scratch, never patched incrementally, so re-editing an
// already finalized score can never double-count.
//
// A finalized match referencing a team absent from teams is silently skipped.
func ComputeStandings(teams []Team, matches []Match) []StandingsRow {
	rows := make([]*StandingsRow, len(teams))
	index := make(map[string]*StandingsRow, len(teams))
	for i, t := range teams {
		rows[i] = &StandingsRow{
			TeamID:   t.ID,
			TeamName: t.Name,
			LogoURL:  t.LogoURL,
			Group:    t.Group,
		}
		index[t.ID] = rows[i]
	}

	for _, m := range matches {
		if !m.Finalized {
			continue
		}
		home := index[m.HomeTeamID]
		away := index[m.AwayTeamID]
		if home == nil || away == nil {
			continue
		}

		home.Played++
		away.Played++

		home.GoalsFor += m.HomeGoals
		home.GoalsAgainst += m.AwayGoals
		away.GoalsFor += m.AwayGoals
		away.GoalsAgainst += m.HomeGoals

		switch {
		case m.HomeGoals > m.AwayGoals:
			home.Wins++
			home.Points += 3
			away.Losses++
		case m.HomeGoals < m.AwayGoals:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
		}
	}

	table := make([]StandingsRow, len(rows))
	for i, r := range rows {
		// Always recompute from the final totals, never trust increments.
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		table[i] = *r
	}

	// Stable sort keeps team insertion order for full ties; no head-to-head
	// or fair-play tie-break is applied beyond goals scored.
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		return a.GoalsFor > b.GoalsFor
	})

	return table
}
