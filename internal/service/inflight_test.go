package service

import "testing"

func TestInflightTracker(t *testing.T) {
	tr := newInflightTracker()

	if !tr.begin("c-1", ActionEdit) {
		t.Fatalf("begin on idle contact failed")
	}
	if tr.begin("c-1", ActionValidate) {
		t.Fatalf("second action on the same contact allowed")
	}
	// Other contacts stay actionable.
	if !tr.begin("c-2", ActionEnrich) {
		t.Fatalf("unrelated contact blocked")
	}

	active := tr.active()
	if active["c-1"] != ActionEdit || active["c-2"] != ActionEnrich {
		t.Fatalf("active = %v", active)
	}

	tr.end("c-1")
	if !tr.begin("c-1", ActionValidate) {
		t.Fatalf("contact still busy after end")
	}

	// active returns a copy; callers must not see later mutations.
	snapshot := tr.active()
	tr.end("c-2")
	if _, ok := snapshot["c-2"]; !ok {
		t.Fatalf("active returned a live map")
	}
}
