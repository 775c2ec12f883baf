package compare

import "testing"

const sampleDiff = `diff --git a/main.go b/main.go
index 83db48f..bf269f4 100644
--- a/main.go
+++ b/main.go
@@ -10,5 +10,5 @@ func main() {
 	a := 1
 	b := 2
-	c := a - b
+	c := a + b
 	_ = c
`

func TestParseHunks_SingleHunk(t *testing.T) {
	hunks := ParseHunks(sampleDiff)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}

	h := hunks[0]
	if h.OldStart != 10 || h.OldLines != 5 || h.NewStart != 10 || h.NewLines != 5 {
		t.Errorf("unexpected range: -%d,%d +%d,%d", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	}

	additions, deletions := CountChanges(hunks)
	if additions != 1 {
		t.Errorf("expected 1 addition, got %d", additions)
	}
	if deletions != 1 {
		t.Errorf("expected 1 deletion, got %d", deletions)
	}

	context := 0
	for _, l := range h.Lines {
		if l.Type == LineContext {
			context++
		}
	}
	if context != 3 {
		t.Errorf("expected 3 context lines, got %d", context)
	}
}

func TestParseHunks_OmittedCounts(t *testing.T) {
	hunks := ParseHunks("@@ -1 +1 @@\n-old\n+new\n")
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	if hunks[0].OldLines != 1 || hunks[0].NewLines != 1 {
		t.Errorf("omitted counts should default to 1, got %d/%d",
			hunks[0].OldLines, hunks[0].NewLines)
	}
}

func TestParseHunks_MultipleHunks(t *testing.T) {
	text := "@@ -1,2 +1,3 @@\n context\n+added\n context\n@@ -10,2 +11,1 @@\n context\n-removed\n"
	hunks := ParseHunks(text)
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}
	if hunks[1].NewStart != 11 {
		t.Errorf("expected second hunk NewStart=11, got %d", hunks[1].NewStart)
	}
}

func TestParseHunks_IgnoresPreambleAndMarkers(t *testing.T) {
	text := "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,1 +1,1 @@\n-x\n+y\n\\ No newline at end of file\n"
	hunks := ParseHunks(text)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	additions, deletions := CountChanges(hunks)
	if additions != 1 || deletions != 1 {
		t.Errorf("expected +1/-1, got +%d/-%d", additions, deletions)
	}
}

func TestParseHunks_DashAndPlusContentLines(t *testing.T) {
	// Deleting a Markdown "---" separator or a "--count;" statement, or
	// adding "++i;", produces content lines whose prefixes resemble the
	// preamble file headers. Inside a hunk they are real changes.
	text := "@@ -1,3 +1,1 @@\n context\n----\n---count;\n+++i;\n"
	hunks := ParseHunks(text)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	additions, deletions := CountChanges(hunks)
	if deletions != 2 {
		t.Errorf("expected 2 deletions, got %d (lines: %+v)", deletions, hunks[0].Lines)
	}
	if additions != 1 {
		t.Errorf("expected 1 addition, got %d (lines: %+v)", additions, hunks[0].Lines)
	}

	h := hunks[0]
	want := []Line{
		{Type: LineContext, Content: "context"},
		{Type: LineDeletion, Content: "---"},
		{Type: LineDeletion, Content: "--count;"},
		{Type: LineAddition, Content: "++i;"},
	}
	if len(h.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(h.Lines), h.Lines)
	}
	for i, l := range h.Lines {
		if l != want[i] {
			t.Errorf("line %d: got %+v, want %+v", i, l, want[i])
		}
	}
}

func TestParseHunks_EmptyInput(t *testing.T) {
	if hunks := ParseHunks(""); hunks != nil {
		t.Errorf("expected no hunks for empty input, got %v", hunks)
	}
}

func TestParseStatusCode(t *testing.T) {
	tests := []struct {
		code       string
		status     FileStatus
		similarity int
	}{
		{"A", StatusAdded, 0},
		{"M", StatusModified, 0},
		{"D", StatusDeleted, 0},
		{"R95", StatusRenamed, 95},
		{"R100", StatusRenamed, 100},
	}

	for _, tt := range tests {
		status, similarity := ParseStatusCode(tt.code)
		if status != tt.status {
			t.Errorf("%s: expected status %s, got %s", tt.code, tt.status, status)
		}
		if similarity != tt.similarity {
			t.Errorf("%s: expected similarity %d, got %d", tt.code, tt.similarity, similarity)
		}
	}
}
