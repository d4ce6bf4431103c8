package quiz

import "strings"

// CorrectThreshold is the lowest similarity that counts as a correct guess.
const CorrectThreshold = 0.80

// Normalize collapses whitespace runs to single spaces, trims and lowercases.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of the normalized
// answer and guess, where M is the number of matched characters and T the
// total length of both strings. Empty input on either side scores 0.
func Similarity(answer, guess string) float64 {
	a := []rune(Normalize(answer))
	b := []rune(Normalize(guess))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := matchingChars(a, b, 0, len(a), 0, len(b))
	return 2 * float64(matched) / float64(len(a)+len(b))
}

func IsCorrect(similarity float64) bool {
	return similarity >= CorrectThreshold
}

func matchingChars(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k + matchingChars(a, b, alo, i, blo, j) + matchingChars(a, b, i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Ties go to the run starting earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestSize := alo, blo, 0
	width := bhi - blo
	prev := make([]int, width+1)
	curr := make([]int, width+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			col := j - blo + 1
			if a[i] != b[j] {
				curr[col] = 0
				continue
			}
			k := prev[col-1] + 1
			curr[col] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		prev, curr = curr, prev
	}
	return besti, bestj, bestSize
}
