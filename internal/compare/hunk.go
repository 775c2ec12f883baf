package compare

import (
	"regexp"
	"strconv"
	"strings"
)

// FileStatus classifies how a file changed between the compared refs.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
)

// LineType classifies a single line within a hunk.
type LineType string

const (
	LineContext  LineType = "context"
	LineAddition LineType = "addition"
	LineDeletion LineType = "deletion"
)

// FileDiff holds the parsed diff for a single file.
type FileDiff struct {
	Path            string
	OldPath         string // set only for renames
	Status          FileStatus
	SimilarityIndex int // 0-100, renames only
	IsBinary        bool
	Additions       int
	Deletions       int
	Hunks           []Hunk
}

// Hunk is a contiguous block of changes bounded by a @@ range header.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string
	Lines    []Line
}

// Line is a single classified line within a hunk.
type Line struct {
	Type    LineType
	Content string
}

// hunkHeaderRe matches the standard unified-diff range header,
// e.g. "@@ -1,3 +1,4 @@ func main()". Line counts are optional and
// default to 1 when omitted.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)

// ParseHunks converts raw unified-diff text into structured hunks.
// Text before the first range header (the diff/index/--- /+++ preamble)
// is ignored, as are "\ No newline at end of file" markers.
func ParseHunks(diffText string) []Hunk {
	var hunks []Hunk
	var current *Hunk

	for _, line := range strings.Split(diffText, "\n") {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			hunks = append(hunks, Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
				Header:   line,
			})
			current = &hunks[len(hunks)-1]
			continue
		}
		if current == nil {
			continue // preamble
		}

		// +++/--- file headers only occur in the preamble, before the
		// first range header; inside a hunk those prefixes are real
		// content changes (e.g. deleting a "---" separator line).
		switch {
		case strings.HasPrefix(line, "+"):
			current.Lines = append(current.Lines, Line{Type: LineAddition, Content: line[1:]})
		case strings.HasPrefix(line, "-"):
			current.Lines = append(current.Lines, Line{Type: LineDeletion, Content: line[1:]})
		case strings.HasPrefix(line, " "):
			current.Lines = append(current.Lines, Line{Type: LineContext, Content: line[1:]})
		}
	}

	return hunks
}

// CountChanges returns the total additions and deletions across hunks.
func CountChanges(hunks []Hunk) (additions, deletions int) {
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAddition:
				additions++
			case LineDeletion:
				deletions++
			}
		}
	}
	return additions, deletions
}

// ParseStatusCode maps a git name-status code to a file status. Rename
// codes carry a similarity percentage, e.g. "R95".
func ParseStatusCode(code string) (FileStatus, int) {
	if strings.HasPrefix(code, "R") {
		similarity := atoiDefault(code[1:], 0)
		return StatusRenamed, similarity
	}
	switch code {
	case "A":
		return StatusAdded, 0
	case "D":
		return StatusDeleted, 0
	default:
		return StatusModified, 0
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
