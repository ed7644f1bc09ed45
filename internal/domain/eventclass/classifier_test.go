package eventclass

import (
	"testing"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want match.EventKind
	}{
		{"Goal", match.KindGoal},
		{"Goal! Arsenal 1, Chelsea 0. Bukayo Saka (Arsenal) right footed shot to the bottom left corner.", match.KindGoal},
		{"Own Goal by Wesley Fofana, Chelsea. Arsenal 2, Chelsea 0.", match.KindOwnGoal},
		{"OWN", match.KindOwnGoal},
		{"Penalty - Scored", match.KindPenalty},
		{"Goal! Arsenal 1, Chelsea 1. Cole Palmer converts the penalty with a left footed shot.", match.KindPenalty},
		{"Penalty saved! Cole Palmer fails to capitalise on this great opportunity.", match.KindSave},
		{"Penalty Arsenal. Saka draws a foul in the penalty area.", match.KindFoul},
		{"Penalty conceded by Levi Colwill (Chelsea) after a foul in the penalty area.", match.KindFoul},
		{"YELLOW_RED", match.KindSecondYellow},
		{"Second yellow card to Moisés Caicedo (Chelsea) for a bad foul.", match.KindSecondYellow},
		{"Red Card", match.KindRedCard},
		{"Yellow Card", match.KindYellowCard},
		{"Declan Rice (Arsenal) is shown the yellow card for a bad foul.", match.KindYellowCard},
		{"Substitution, Arsenal. Gabriel Jesus replaces Bukayo Saka.", match.KindSubstitution},
		{"Attempt saved. Kai Havertz (Arsenal) header is saved in the top centre of the goal.", match.KindSave},
		{"Corner,  Chelsea. Conceded by William Saliba.", match.KindCornerKick},
		{"Attempt missed. Shot from outside the box misses to the top right corner.", match.KindOther},
		{"Offside, Chelsea. Nicolas Jackson is caught offside.", match.KindOffside},
		{"Foul by Declan Rice (Arsenal).", match.KindFoul},
		{"Enzo Fernández (Chelsea) wins a free kick in the defensive half.", match.KindFreeKick},
		{"First Half ends, Arsenal 1, Chelsea 0.", match.KindHalfTime},
		{"HT", match.KindHalfTime},
		{"Kickoff", match.KindMatchStart},
		{"First Half begins.", match.KindMatchStart},
		{"Match ends, Arsenal 2, Chelsea 0.", match.KindMatchEnd},
		{"Second Half begins Arsenal 1, Chelsea 0.", match.KindOther},
		{"Goal disallowed for offside.", match.KindOffside},
		{"", match.KindOther},
		{"Delay in match because of an injury.", match.KindOther},
	}

	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyAnyFallsBackToText(t *testing.T) {
	t.Parallel()

	if got := ClassifyAny("unknown-type", "Corner, Arsenal."); got != match.KindCornerKick {
		t.Fatalf("expected text fallback, got %q", got)
	}
	if got := ClassifyAny("Substitution", "Goal!"); got != match.KindSubstitution {
		t.Fatalf("expected first candidate to win, got %q", got)
	}
	if got := ClassifyAny(); got != match.KindOther {
		t.Fatalf("expected other for no candidates, got %q", got)
	}
}

func TestAttributeSide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text, home, away string
		want             match.Side
	}{
		{"Corner, Arsenal. Conceded by Reece James.", "Arsenal", "Chelsea", match.SideHome},
		{"Foul by Cole Palmer (Chelsea).", "Arsenal", "Chelsea", match.SideAway},
		{"Goal! Manchester United 1, Manchester City 0.", "Manchester United", "Manchester City", match.SideHome},
		{"Rashford (United) wins a free kick.", "Manchester United", "Manchester City", match.SideHome},
		{"Attempt by Haaland (Manchester City).", "Manchester United", "Manchester City", match.SideAway},
		{"Foul by Nordsjælland player on Kobenhavn striker.", "FC Copenhagen", "FC København", match.SideAway},
		{"Goal for Koln!", "Köln", "Bayern München", match.SideHome},
		{"Tor für Bayern", "1. FC Köln", "FC Bayern München", match.SideAway},
		{"Free kick to Colonia", "Koln", "Bayern", match.SideUnknown},
		{"Arsenal and Chelsea line up.", "Arsenal", "Chelsea", match.SideHome},
		{"Tottenham attack.", "Arsenal", "Chelsea", match.SideUnknown},
		{"Arsenalistas chant.", "Arsenal", "Chelsea", match.SideUnknown},
	}

	for _, tc := range cases {
		if got := AttributeSide(tc.text, tc.home, tc.away); got != tc.want {
			t.Fatalf("AttributeSide(%q, %q, %q) = %q, want %q", tc.text, tc.home, tc.away, got, tc.want)
		}
	}
}
