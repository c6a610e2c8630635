package league

import "testing"

func player(id, team string) Player {
	return Player{ID: id, FirstName: "J", LastName: id, TeamID: team}
}

func TestComputeTopScorers_SumsEventsAcrossMatches(t *testing.T) {
	players := []Player{player("p", "a"), player("q", "b")}
	matches := []Match{
		{Finalized: true, Scorers: []GoalEvent{{PlayerID: "p", Count: 2}}},
		{Finalized: true, Scorers: []GoalEvent{{PlayerID: "p", Count: 1}, {PlayerID: "q", Count: 1}}},
	}

	scorers := ComputeTopScorers(players, matches, 10)
	if len(scorers) != 2 {
		t.Fatalf("len = %d, want 2", len(scorers))
	}
	if scorers[0].ID != "p" || scorers[0].Goals != 3 {
		t.Errorf("top scorer = %s with %d goals, want p with 3", scorers[0].ID, scorers[0].Goals)
	}
}

func TestComputeTopScorers_FiltersAndTruncates(t *testing.T) {
	players := []Player{player("a", "t"), player("b", "t"), player("c", "t")}
	matches := []Match{{Finalized: true, Scorers: []GoalEvent{
		{PlayerID: "a", Count: 5},
		{PlayerID: "b", Count: 2},
	}}}

	scorers := ComputeTopScorers(players, matches, 1)
	if len(scorers) != 1 || scorers[0].ID != "a" {
		t.Errorf("scorers = %+v, want only a", scorers)
	}
}

func TestComputeTopScorers_IgnoresUnfinalizedEvents(t *testing.T) {
	players := []Player{player("a", "t")}
	matches := []Match{{Finalized: false, Scorers: []GoalEvent{{PlayerID: "a", Count: 4}}}}

	if scorers := ComputeTopScorers(players, matches, 10); len(scorers) != 0 {
		t.Errorf("scorers = %+v, want none from unfinalized match", scorers)
	}
}

func TestComputeTopScorers_FallsBackToStoredCounters(t *testing.T) {
	p := player("a", "t")
	p.Goals = 7
	matches := []Match{{Finalized: true}} // no event detail anywhere

	scorers := ComputeTopScorers([]Player{p}, matches, 10)
	if len(scorers) != 1 || scorers[0].Goals != 7 {
		t.Errorf("scorers = %+v, want stored counter 7", scorers)
	}
}

func TestComputeCardTable_WeightedScore(t *testing.T) {
	players := []Player{player("q", "t"), player("r", "t")}
	matches := []Match{
		{Finalized: true, YellowCards: []string{"q"}},
		{Finalized: true, RedCards: []string{"q"}},
		{Finalized: true, YellowCards: []string{"r", "r", "r"}},
	}

	rows := ComputeCardTable(players, matches, 10)
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	q := rows[0]
	if q.ID != "q" || q.CardPoints != 3 {
		t.Errorf("rows[0] = %s with %d points, want q with 3 (1 yellow + 1 red)", q.ID, q.CardPoints)
	}
	// r also has 3 points (three yellows, double entries are two cards) but
	// q wins the tie on red count.
	r := rows[1]
	if r.ID != "r" || r.CardPoints != 3 || r.YellowCards != 3 {
		t.Errorf("rows[1] = %+v, want r with 3 yellows", r)
	}
}

func TestComputeCardTable_FiltersCleanPlayers(t *testing.T) {
	players := []Player{player("clean", "t"), player("dirty", "t")}
	matches := []Match{{Finalized: true, YellowCards: []string{"dirty"}}}

	rows := ComputeCardTable(players, matches, 10)
	if len(rows) != 1 || rows[0].ID != "dirty" {
		t.Errorf("rows = %+v, want only dirty", rows)
	}
}

func TestComputeKeeperTable_AverageAndCleanSheets(t *testing.T) {
	keeper := player("k", "a")
	keeper.Position = Goalkeeper
	outfield := player("o", "a")
	outfield.Position = Forward
	idleKeeper := player("i", "idle")
	idleKeeper.Position = Goalkeeper

	matches := []Match{
		finalized("a", "b", 1, 0), // clean sheet
		finalized("b", "a", 3, 1), // concedes 3
	}

	rows := ComputeKeeperTable([]Player{keeper, outfield, idleKeeper}, matches)
	if len(rows) != 1 {
		t.Fatalf("len = %d, want 1 (only keepers with played matches)", len(rows))
	}
	k := rows[0]
	if k.MatchesPlayed != 2 || k.GoalsConceded != 3 || k.CleanSheets != 1 {
		t.Errorf("keeper = %+v, want 2 played, 3 conceded, 1 clean sheet", k)
	}
	if k.AvgConceded != 1.5 {
		t.Errorf("avg = %v, want 1.5", k.AvgConceded)
	}
}

func TestComputeKeeperTable_BestAverageFirst(t *testing.T) {
	k1 := player("k1", "a")
	k1.Position = Goalkeeper
	k2 := player("k2", "b")
	k2.Position = Goalkeeper

	matches := []Match{finalized("a", "b", 2, 0)}

	rows := ComputeKeeperTable([]Player{k2, k1}, matches)
	if len(rows) != 2 || rows[0].ID != "k1" {
		t.Errorf("rows = %+v, want the clean-sheet keeper first", rows)
	}
}
