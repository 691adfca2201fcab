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

package mtbzip2

import (
	"fmt"
	"time"
)

const (
	EVT_COMPRESSION_START = 0 // pipeline started
	EVT_BLOCK_DISPATCHED  = 1 // reader handed a filled block to a worker
	EVT_BLOCK_COMPRESSED  = 2 // worker finished compressing a block
	EVT_BLOCK_EMITTED     = 3 // writer appended a block to the output stream
	EVT_COMPRESSION_END   = 4 // pipeline finished
)

// Event reports progress of one block (or of the pipeline as a whole)
// through the Reader/Worker/Writer stages, so a -v listener can print
// progress without the pipeline depending on any particular sink.
type Event struct {
	eventType int
	blockID   uint64
	size      int64
	crc       uint32
	eventTime time.Time
}

// NewEvent creates an Event describing one block id.
func NewEvent(evtType int, blockID uint64, size int64, crc uint32) *Event {
	return &Event{eventType: evtType, blockID: blockID, size: size, crc: crc, eventTime: time.Now()}
}

// Type returns the event type (one of the EVT_* constants).
func (e *Event) Type() int { return e.eventType }

// BlockID returns the 1-based block id this event describes.
func (e *Event) BlockID() uint64 { return e.blockID }

// Size returns the byte size associated with the event; meaning depends
// on Type (post-RLE-1 block bytes for EVT_BLOCK_DISPATCHED, compressed bit count
// for EVT_BLOCK_COMPRESSED/EVT_BLOCK_EMITTED).
func (e *Event) Size() int64 { return e.size }

// CRC returns the block CRC, when relevant to this event type.
func (e *Event) CRC() uint32 { return e.crc }

// Time returns when the event was created.
func (e *Event) Time() time.Time { return e.eventTime }

// String renders a one-line, human-readable form of the event.
func (e *Event) String() string {
	label := "UNKNOWN"

	switch e.eventType {
	case EVT_COMPRESSION_START:
		label = "COMPRESSION_START"
	case EVT_BLOCK_DISPATCHED:
		label = "BLOCK_DISPATCHED"
	case EVT_BLOCK_COMPRESSED:
		label = "BLOCK_COMPRESSED"
	case EVT_BLOCK_EMITTED:
		label = "BLOCK_EMITTED"
	case EVT_COMPRESSION_END:
		label = "COMPRESSION_END"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"id\":%d, \"size\":%d, \"crc\":%08x }",
		label, e.blockID, e.size, e.crc)
}

// Listener is implemented by event processors (e.g. the CLI's -v printer).
type Listener interface {
	// ProcessEvent is called whenever a Listener receives an event. The
	// pipeline calls this synchronously from Reader/Worker/Writer
	// goroutines, so implementations must not block for long.
	ProcessEvent(evt *Event)
}
