package output

import "math"

// Widths holds the pre-computed Human-mode alignment maxima (spec §4.11):
// author-string length, path length, source/destination line-number
// digit widths, and score digit width.
type Widths struct {
	AuthorLen  int
	PathLen    int
	SLnoDigits int
	LnoDigits  int
	ScoreDigits int
}

// Align scans rows once and computes the Widths every Human-mode line
// needs, so formatting a single row never has to look at its neighbors.
func Align(rows []Row) Widths {
	var w Widths
	maxSLno, maxLno, maxScore := 0, 0, 0
	for _, r := range rows {
		if r.Commit != nil && len(r.Commit.Author) > w.AuthorLen {
			w.AuthorLen = len(r.Commit.Author)
		}
		if len(r.Path) > w.PathLen {
			w.PathLen = len(r.Path)
		}
		if v := r.SLno + r.NumLines; v > maxSLno {
			maxSLno = v
		}
		if v := r.Lno + r.NumLines; v > maxLno {
			maxLno = v
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	w.SLnoDigits = digitWidth(maxSLno)
	w.LnoDigits = digitWidth(maxLno)
	w.ScoreDigits = digitWidth(maxScore)
	return w
}

// HasMultiplePaths reports whether rows cover more than one distinct
// suspect path, which forces the filename column on in Human mode even
// without -f/--show-name.
func HasMultiplePaths(rows []Row) bool {
	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Path] = true
		if len(seen) > 1 {
			return true
		}
	}
	return false
}

// digitWidth implements "1 + floor(log10(max))", treating max<1 as a
// single digit since log10 is undefined there.
func digitWidth(max int) int {
	if max < 1 {
		return 1
	}
	return 1 + int(math.Floor(math.Log10(float64(max))))
}
