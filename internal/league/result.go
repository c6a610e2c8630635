package league

// ValidateResult checks a result submission against the rosters of the two
// teams involved before anything is written. Scores must be non-negative and
// every attributed player must exist on either roster.
//
// The sum of goal-event counts is deliberately not required to equal the
// recorded score; that mismatch is surfaced by ReconcileGoals for display
// rather than rejected at write time.
func ValidateResult(sub ResultSubmission, roster []Player) error {
	if sub.HomeGoals < 0 {
		return &ValidationError{Field: "goles_local", Reason: "debe ser >= 0"}
	}
	if sub.AwayGoals < 0 {
		return &ValidationError{Field: "goles_visitante", Reason: "debe ser >= 0"}
	}

	known := make(map[string]bool, len(roster))
	for _, p := range roster {
		known[p.ID] = true
	}

	for _, g := range sub.Scorers {
		if g.Count < 1 {
			return &ValidationError{Field: "goleadores.cantidad", Reason: "debe ser >= 1"}
		}
		if !known[g.PlayerID] {
			return &ReferentialError{Kind: "jugador", ID: g.PlayerID}
		}
	}
	for _, id := range sub.YellowCards {
		if !known[id] {
			return &ReferentialError{Kind: "jugador", ID: id}
		}
	}
	for _, id := range sub.RedCards {
		if !known[id] {
			return &ReferentialError{Kind: "jugador", ID: id}
		}
	}
	return nil
}

// ReconcileGoals reports whether the goal events attached to a match account
// for its recorded score. A match without event detail reconciles trivially.
func ReconcileGoals(m Match) (eventGoals int, ok bool) {
	for _, g := range m.Scorers {
		eventGoals += g.Count
	}
	if len(m.Scorers) == 0 {
		return 0, true
	}
	return eventGoals, eventGoals == m.HomeGoals+m.AwayGoals
}
