package validation

import "testing"

func TestSeverityHelpers(t *testing.T) {
	tests := []struct {
		name      string
		add       func(r *Report)
		wantValid bool
		wantSev   Severity
		summary   string
	}{
		{"error", func(r *Report) { r.AddError(Result{Level: LevelSchema, Message: "canvas width must be positive"}) },
			false, SeverityError, "1 errors, 0 warnings, 0 info"},
		{"warning", func(r *Report) { r.AddWarning(Result{Level: LevelData, Code: CodeMissingLayout, Message: "no region"}) },
			true, SeverityWarning, "0 errors, 1 warnings, 0 info"},
		{"info", func(r *Report) { r.AddInfo(Result{Level: LevelPlacement, Code: CodeEmptyMask, Message: "uniform fallback"}) },
			true, SeverityInfo, "0 errors, 0 warnings, 1 info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport()
			tt.add(r)
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", r.Valid, tt.wantValid)
			}
			all := append(append(append([]Result{}, r.Errors...), r.Warnings...), r.Info...)
			if len(all) != 1 {
				t.Fatalf("findings = %d, want 1", len(all))
			}
			if all[0].Severity != tt.wantSev {
				t.Errorf("Severity = %s, want %s", all[0].Severity, tt.wantSev)
			}
			if r.Summary != tt.summary {
				t.Errorf("Summary = %q, want %q", r.Summary, tt.summary)
			}
		})
	}
}

func TestMergeCarriesInvalidity(t *testing.T) {
	build := NewReport()
	build.AddWarning(Result{Level: LevelData, Code: CodeMalformedPrice, Message: "price \"abc\""})

	scene := NewReport()
	scene.AddError(Result{Level: LevelScene, Code: CodeMissingID, Message: "empty id"})
	scene.AddInfo(Result{Level: LevelPlacement, Code: CodeEmptyMask, Message: "uniform"})

	build.Merge(scene)
	build.Merge(nil)

	if build.Valid {
		t.Error("merged report should be invalid when either side has errors")
	}
	if build.Summary != "1 errors, 1 warnings, 1 info" {
		t.Errorf("Summary = %q", build.Summary)
	}

	clean := NewReport()
	clean.Merge(NewReport())
	if !clean.Valid {
		t.Error("merging valid reports should stay valid")
	}
}

func TestCountCode(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelPlacement, Code: CodeMissingLayout, Message: "a"})
	r.AddWarning(Result{Level: LevelPlacement, Code: CodeMissingLayout, Message: "b"})
	r.AddInfo(Result{Level: LevelPlacement, Code: CodeEmptyMask, Message: "c"})
	r.AddError(Result{Level: LevelSchema, Message: "uncoded"})

	if got := r.CountCode(CodeMissingLayout); got != 2 {
		t.Errorf("CountCode(missing_layout) = %d, want 2", got)
	}
	if got := r.CountCode(CodeUnplaced); got != 0 {
		t.Errorf("CountCode(unplaced) = %d, want 0", got)
	}

	counts := r.Counts()
	want := map[string]int{CodeMissingLayout: 2, CodeEmptyMask: 1, "": 1}
	if len(counts) != len(want) {
		t.Fatalf("Counts = %v, want %v", counts, want)
	}
	for code, n := range want {
		if counts[code] != n {
			t.Errorf("Counts[%q] = %d, want %d", code, counts[code], n)
		}
	}
}
