package surface

import "testing"

func TestWithTextIsCaseInsensitive(t *testing.T) {
	q := WithText("button", "join contest")
	if !q.Text.MatchString("JOIN CONTEST") {
		t.Fatalf("expected case-insensitive match")
	}
	if q.String() != "button /(?i)join contest/" {
		t.Fatalf("unexpected string form %q", q.String())
	}
}

func TestCandidatesFirst(t *testing.T) {
	var empty Candidates
	if !empty.First().IsZero() {
		t.Fatalf("expected zero query from empty candidates")
	}
	c := Candidates{CSS(".a"), CSS(".b")}
	if c.First().CSS != ".a" {
		t.Fatalf("expected first candidate")
	}
}
