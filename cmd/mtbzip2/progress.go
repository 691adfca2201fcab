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

package main

import (
	"fmt"
	"os"
	"sync"

	mtbzip2 "github.com/flanglet/mtbzip2-go"
)

// progressPrinter is the -v listener: Reader, Worker and Writer
// goroutines all call ProcessEvent concurrently, so writes to stderr
// are serialized through a mutex, the same discipline the teacher's
// Printer type applies to concurrent compressor output.
type progressPrinter struct {
	mu   sync.Mutex
	path string
}

func newProgressPrinter(path string) *progressPrinter {
	return &progressPrinter{path: path}
}

// ProcessEvent implements mtbzip2.Listener.
func (p *progressPrinter) ProcessEvent(evt *mtbzip2.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(os.Stderr, "%s: %s\n", p.path, evt.String())
}
