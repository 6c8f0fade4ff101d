package tabularcore

import "math"

// DetectResult is one candidate delimiter's score from Detect.
type DetectResult struct {
	Delimiter byte
	Score     float64
	MeanCount float64
}

// Detect samples up to maxRows rows of input per candidate delimiter and
// scores each by how consistent its per-row delimiter count is. It returns
// the best-scoring candidate's delimiter byte, or an error if sample
// contains no complete row for any candidate.
//
// Score is 100 * (1 - stddev/mean) clamped to [0, 100] when mean > 0; a
// candidate that never occurs in the sample scores 0. Ties break first by
// higher mean delimiter count, then by candidate order as given.
func Detect(sample []byte, candidates []byte, maxRows int) (byte, []DetectResult, error) {
	if len(candidates) == 0 {
		return 0, nil, newParseError(KindUnknown, 0, 0, "no candidate delimiters given")
	}
	if maxRows <= 0 {
		maxRows = 20
	}

	results := make([]DetectResult, len(candidates))
	bestIdx := -1
	anyRows := false

	for ci, delim := range candidates {
		d := Dialect{Delimiter: delim, Quote: '"', Terminator: TerminatorAny, Strict: false}
		s := NewScanner(d)

		counts := make([]int, 0, maxRows)
		starts := make([]int, 4096)
		lengths := make([]int, 4096)

		window := sample
		for rows := 0; rows < maxRows && len(window) > 0; rows++ {
			res, err := s.ScanRow(window, starts, lengths, rows+1)
			if err != nil {
				break
			}
			// Delimiter occurrences in the row: one fewer than its columns.
			counts = append(counts, res.ColumnCount-1)
			if res.Consumed <= 0 {
				break
			}
			window = window[res.Consumed:]
		}

		if len(counts) > 0 {
			anyRows = true
		}
		mean, stddev := meanStddev(counts)
		score := 0.0
		if mean > 0 {
			score = 100 * (1 - stddev/mean)
			if score < 0 {
				score = 0
			}
			if score > 100 {
				score = 100
			}
		}
		results[ci] = DetectResult{Delimiter: delim, Score: score, MeanCount: mean}

		if bestIdx < 0 || better(results[ci], results[bestIdx]) {
			bestIdx = ci
		}
	}

	if bestIdx < 0 || !anyRows {
		return 0, results, newParseError(KindUnknown, 0, 0, "no delimiter candidate produced any rows")
	}
	return results[bestIdx].Delimiter, results, nil
}

// better reports whether a outranks b: higher score wins, ties break by
// higher mean delimiter count; equal score and mean preserves input order (the
// caller never calls better with a == b's own index, so first-found wins).
func better(a, b DetectResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.MeanCount > b.MeanCount
}

func meanStddev(counts []int) (mean, stddev float64) {
	if len(counts) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, c := range counts {
		sum += float64(c)
	}
	mean = sum / float64(len(counts))

	variance := 0.0
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(counts))
	stddev = math.Sqrt(variance)
	return mean, stddev
}
