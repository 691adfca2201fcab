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

package compress

// encodeZeroRuns rewrites MTF ranks into bzip2's second run-length
// stage: a run of n consecutive rank-0 symbols (n >= 1) is replaced by
// the bijective base-2 digits of n using RUNA (digit value 1) and RUNB
// (digit value 2), least-significant digit first; a nonzero rank r is
// passed through as symbol r+1 so it never collides with RUNA/RUNB;
// eob terminates the block's symbol stream.
//
// This is the mathematical inverse of the accumulation a bzip2 decoder
// performs while reading RUNA/RUNB symbols
// (repeat += repeatPower*(symbol+1); repeatPower <<= 1), grounded on
// that decode loop in cosnicolaou's bzip2 reader.
func encodeZeroRuns(ranks []int, eob int) []int {
	out := make([]int, 0, len(ranks)+2)
	run := 0

	flush := func() {
		n := run

		for n > 0 {
			n--
			out = append(out, n%2)
			n /= 2
		}

		run = 0
	}

	for _, r := range ranks {
		if r == 0 {
			run++
			continue
		}

		flush()
		out = append(out, r+1)
	}

	flush()
	out = append(out, eob)
	return out
}
