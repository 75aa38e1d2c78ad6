/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apis

// Decoder is a single-pass cursor positioned at one undecoded value.
// Decode may be called at most once per cursor.
type Decoder interface {
	// Decode reads the value under the cursor into v, which must be a pointer.
	Decode(v any) error
}

// MapReader walks the entries of an encoded map without materializing it.
//
// Keys are read before values so that a caller can choose how to decode a
// value based on its key. The reader hands the same underlying cursor to
// the value decoder; it never buffers the value separately.
type MapReader interface {
	// Next decodes the next key into key and reports whether an entry was
	// read. It returns false once the map is exhausted. A value left
	// unconsumed by the previous entry is skipped first.
	Next(key any) (bool, error)
	// Value returns a cursor positioned at the value of the current entry.
	Value() Decoder
	// More reports whether another entry follows the current one.
	More() (bool, error)
	// Close consumes the end of the map.
	Close() error
}

// SeqReader walks the elements of an encoded sequence of maps.
type SeqReader interface {
	// Next returns a reader over the next element, or false at the end.
	// The previous element's reader must be closed before calling Next.
	Next() (MapReader, bool, error)
	// Close consumes the end of the sequence and rejects trailing data.
	Close() error
}

// MapWriter emits an encoded map entry by entry.
type MapWriter interface {
	// BeginMap opens a map that will hold exactly n entries.
	BeginMap(n int) error
	// Key writes the key of the next entry.
	Key(k any) error
	// Value writes the value of the current entry.
	Value(v any) error
	// EndMap closes the map.
	EndMap() error
}
