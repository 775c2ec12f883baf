package compare

import "fmt"

// Category buckets a complexity score for display and decision making.
type Category string

const (
	CategoryTrivial  Category = "trivial"
	CategoryModerate Category = "moderate"
	CategoryHighRisk Category = "high-risk"
)

// Factors is the explicit input record for complexity scoring. Keeping
// it separate from parsing lets the thresholds be tuned and tested
// without touching diff logic.
type Factors struct {
	FilesChanged    int
	TotalChurn      int // additions + deletions across all files
	AuthorDiversity int // distinct commit authors in the compared range
	BinaryFiles     int
	TimeSpanDays    int // absolute gap between the two branch tips
	CommitDistance  int // ahead + behind
}

// Assessment is the scored complexity of merging one branch into another.
type Assessment struct {
	Score           float64
	Category        Category
	Factors         Factors
	Recommendations []string
}

// Scoring weights. The score must stay monotonic non-decreasing in every
// factor, so all weights are positive.
const (
	weightFiles    = 2.0
	weightChurn    = 0.1
	weightAuthors  = 5.0
	weightBinary   = 10.0
	weightTimeSpan = 0.5
	weightDistance = 1.0
)

// Category boundaries and per-factor advisory thresholds.
const (
	moderateScore = 20.0
	highRiskScore = 50.0

	manyFilesThreshold   = 20
	highChurnThreshold   = 500
	manyAuthorsThreshold = 3
	wideTimeSpanDays     = 30
	farApartCommits      = 50
)

// Assess scores the given factors and derives a category plus advisory
// recommendations for each breached threshold.
func Assess(f Factors) Assessment {
	score := weightFiles*float64(f.FilesChanged) +
		weightChurn*float64(f.TotalChurn) +
		weightAuthors*float64(f.AuthorDiversity) +
		weightBinary*float64(f.BinaryFiles) +
		weightTimeSpan*float64(f.TimeSpanDays) +
		weightDistance*float64(f.CommitDistance)

	category := CategoryTrivial
	switch {
	case score >= highRiskScore:
		category = CategoryHighRisk
	case score >= moderateScore:
		category = CategoryModerate
	}

	var recs []string
	if f.FilesChanged > manyFilesThreshold {
		recs = append(recs, fmt.Sprintf("touches %d files; review in smaller pieces if possible", f.FilesChanged))
	}
	if f.TotalChurn > highChurnThreshold {
		recs = append(recs, fmt.Sprintf("high line churn (%d lines); expect a long review", f.TotalChurn))
	}
	if f.AuthorDiversity > manyAuthorsThreshold {
		recs = append(recs, fmt.Sprintf("%d distinct authors in range; coordinate before merging", f.AuthorDiversity))
	}
	if f.BinaryFiles > 0 {
		recs = append(recs, fmt.Sprintf("%d binary file(s) changed; conflicts cannot be merged by hand", f.BinaryFiles))
	}
	if f.TimeSpanDays > wideTimeSpanDays {
		recs = append(recs, fmt.Sprintf("branch tips are %d days apart; rebase before merging", f.TimeSpanDays))
	}
	if f.CommitDistance > farApartCommits {
		recs = append(recs, fmt.Sprintf("branches are %d commits apart; consider merging the target first", f.CommitDistance))
	}

	return Assessment{
		Score:           score,
		Category:        category,
		Factors:         f,
		Recommendations: recs,
	}
}
