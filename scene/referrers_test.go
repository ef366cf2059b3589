package scene

import "testing"

func TestReferrersContains(t *testing.T) {
	var r *Referrers
	if r.Contains("a") {
		t.Fatal("nil stack should contain nothing")
	}
	r = r.Push("a")
	if !r.Contains("a") {
		t.Fatal("expected pushed id to be contained")
	}
	if r.Contains("b") {
		t.Fatal("did not expect unrelated id to be contained")
	}
}

func TestReferrersSiblingBranchesIsolated(t *testing.T) {
	base := (*Referrers)(nil).Push("use:outer")
	left := base.Push("use:left")
	right := base.Push("use:right")

	if !left.Contains("use:outer") || !right.Contains("use:outer") {
		t.Fatal("both branches should see the shared ancestor frame")
	}
	if left.Contains("use:right") || right.Contains("use:left") {
		t.Fatal("sibling branches must not see each other's frames")
	}
}
