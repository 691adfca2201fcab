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

// Package benchmark carries throughput measurements that are not
// correctness tests (see compress/compressor_test.go and
// pipeline/pipeline_test.go for those): how many MB/s the pipeline
// pushes at a given worker count, mirroring the teacher's
// BenchmarkBWT/BenchmarkBWTS role for the transform package.
package benchmark

import (
	"bytes"
	"math/rand"
	"runtime"
	"testing"
	"time"

	"github.com/flanglet/mtbzip2-go/internal"
	"github.com/flanglet/mtbzip2-go/pipeline"
)

func benchmarkPipeline(b *testing.B, sizeMB, blockSize100k, numWorkers int) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	data := make([]byte, sizeMB*1024*1024)

	for i := range data {
		data[i] = byte(rnd.Intn(256))
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		out := internal.NewBufferStream()

		if err := pipeline.Compress(bytes.NewReader(data), out, blockSize100k, numWorkers); err != nil {
			b.Fatalf("Compress: %v", err)
		}
	}
}

// BenchmarkPipelineSingleWorker establishes the single-worker baseline
// that scenario E6's efficiency bound (>= 0.6 * N * single-worker
// throughput) is measured against.
func BenchmarkPipelineSingleWorker(b *testing.B) {
	benchmarkPipeline(b, 8, 9, 1)
}

// BenchmarkPipelineAllCPUs measures throughput with one worker per
// available CPU, the configuration spec.md's scenario E6 exercises.
func BenchmarkPipelineAllCPUs(b *testing.B) {
	benchmarkPipeline(b, 8, 9, runtime.NumCPU())
}
