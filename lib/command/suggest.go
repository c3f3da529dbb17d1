// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

// suggestCommand returns the command name closest to unknown by edit
// distance, or "" if nothing is within a distance of 3.
func suggestCommand(unknown string, names []string) string {
	bestName := ""
	bestDistance := 4

	for _, name := range names {
		distance := levenshtein(unknown, name)
		if distance < bestDistance {
			bestDistance = distance
			bestName = name
		}
	}

	return bestName
}

// levenshtein computes the edit distance between a and b using a
// single row of the distance matrix.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := previous[i] + 1
			insertion := current[i-1] + 1
			substitution := previous[i-1] + cost

			current[i] = min(deletion, insertion, substitution)
		}

		previous = current
	}

	return previous[len(a)]
}
