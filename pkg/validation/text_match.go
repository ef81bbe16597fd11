package validation

import (
	"strings"

	"github.com/arbovm/levenshtein"

	"go-image-translator/pkg/models"
)

// ScoreMatch compares the text extracted from an image against the
// caller-supplied expected text. Character error rate comes from the
// levenshtein distance over runes, word error rate from the same edit
// distance over whitespace-split tokens. Both are capped at 1.0.
func ScoreMatch(expected, actual string) *models.TextMatch {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)

	cer := errorRate(levenshtein.Distance(expected, actual), len([]rune(expected)))
	wer := errorRate(wordDistance(strings.Fields(expected), strings.Fields(actual)), len(strings.Fields(expected)))

	return &models.TextMatch{
		ExpectedText:  expected,
		CharErrorRate: cer,
		WordErrorRate: wer,
		MatchScore:    1 - cer,
	}
}

func errorRate(distance, refLen int) float64 {
	if refLen == 0 {
		if distance == 0 {
			return 0
		}
		return 1
	}
	rate := float64(distance) / float64(refLen)
	if rate > 1 {
		rate = 1
	}
	return rate
}

// wordDistance is edit distance over whole tokens; the levenshtein
// dependency operates on characters only.
func wordDistance(ref, hyp []string) int {
	if len(ref) == 0 {
		return len(hyp)
	}
	if len(hyp) == 0 {
		return len(ref)
	}

	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(hyp)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
