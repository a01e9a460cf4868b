package services

// similarityRatio scores how alike two strings are using the
// Ratcliff-Obershelp algorithm: twice the number of matching characters
// over the combined length, where matches are found by recursively
// splitting around the longest common substring. Returns a value in
// [0, 1].
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := matchingChars([]rune(a), []rune(b))
	return 2.0 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

func matchingChars(a, b []rune) int {
	aStart, bStart, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:aStart], b[:bStart])
	total += matchingChars(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (aStart, bStart, size int) {
	// lengths[j] holds the common-suffix length ending at a[i], b[j-1]
	// from the previous row
	lengths := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		// Walk b right-to-left so each row can be updated in place
		for j := len(b); j >= 1; j-- {
			if a[i] == b[j-1] {
				lengths[j] = lengths[j-1] + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size + 1
					bStart = j - size
				}
			} else {
				lengths[j] = 0
			}
		}
	}
	return aStart, bStart, size
}
