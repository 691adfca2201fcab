/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package transform

// ComputeBWT computes the Burrows-Wheeler transform of data using the
// linear-time SA-IS suffix array construction in SA_IS.go, in the single
// fixed-alphabet (256 symbols), single-primary-index shape bzip2 blocks
// need: one rotation origin per block, no chunking. It returns the
// transformed bytes and the primary index (the row of the sorted
// rotation matrix holding the original, unrotated data).
//
// Rotations are ranked by suffix-sorting data+data followed by one
// symbol (256) larger than any byte: every suffix starting in the first
// copy is longer than n, so its first n symbols (its rotation) decide
// its rank, and identical rotations of a periodic block come out in
// ascending start order.
func ComputeBWT(data []byte) ([]byte, int, error) {
	n := len(data)

	if n == 0 {
		return nil, 0, nil
	}

	if n == 1 {
		return []byte{data[0]}, 0, nil
	}

	ints := make([]int, 2*n+1)
	ints[2*n] = 256

	for i, b := range data {
		ints[i] = int(b)
		ints[i+n] = int(b)
	}

	sa := make([]int, 2*n+1)
	ComputeSuffixArray(ints, sa, 0, 2*n+1, 257, false)

	out, primaryIndex := make([]byte, 0, n), 0

	for _, v := range sa {
		if v == 0 {
			primaryIndex = len(out)
		}

		if v < n {
			out = append(out, data[(v+n-1)%n])
		}
	}

	return out, primaryIndex, nil
}
