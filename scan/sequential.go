package scan

import "golang.org/x/exp/constraints"

// SequentialInclusive replaces data with its inclusive prefix sum in a single
// pass and returns the total. Any length is accepted; an empty slice sums to 0.
func SequentialInclusive[T constraints.Integer](data []T) T {
	for i := 0; i < len(data)-1; i++ {
		data[i+1] += data[i]
	}

	if len(data) == 0 {
		return 0
	}
	return data[len(data)-1]
}

// SequentialExclusive replaces data with its exclusive prefix sum in a single
// pass and returns the total.
func SequentialExclusive[T constraints.Integer](data []T) T {
	var sum T
	for i, v := range data {
		data[i] = sum
		sum += v
	}
	return sum
}
