/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package archive builds minimal uncompressed ZIP containers whose bytes
// depend only on the entries and their order.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

const (
	localSig   = 0x04034b50
	centralSig = 0x02014b50
	endSig     = 0x06054b50

	zipVersion = 20

	localHeaderLen   = 30
	centralHeaderLen = 46
	endRecordLen     = 22
)

var (
	ErrNameTooLong    = errors.New("archive: entry name too long")
	ErrTooManyEntries = errors.New("archive: too many entries")
	ErrTooLarge       = errors.New("archive: content too large")
)

// Entry is one file of the archive.
type Entry struct {
	Name    string
	Content []byte
}

// Text is a convenience for text entries.
func Text(name, content string) Entry { return Entry{Name: name, Content: []byte(content)} }

type placed struct {
	name   []byte
	crc    uint32
	size   uint32
	offset uint32
}

// Build returns the archive: local entries, central directory and end
// record. Entries are stored, not compressed; all timestamps are zero.
func Build(entries []Entry) ([]byte, error) {
	if len(entries) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEntries, len(entries))
	}
	var buf bytes.Buffer
	le := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	index := make([]placed, 0, len(entries))
	for _, e := range entries {
		name := []byte(e.Name)
		if len(name) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(name))
		}
		if uint64(len(e.Content)) > math.MaxUint32 || uint64(buf.Len()) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %s", ErrTooLarge, e.Name)
		}
		p := placed{
			name:   name,
			crc:    crc32.ChecksumIEEE(e.Content),
			size:   uint32(len(e.Content)),
			offset: uint32(buf.Len()),
		}
		le(uint32(localSig))
		le(uint16(zipVersion)) // version needed
		le(uint16(0))          // flags
		le(uint16(0))          // method: store
		le(uint16(0))          // mod time
		le(uint16(0))          // mod date
		le(p.crc)
		le(p.size) // compressed
		le(p.size) // uncompressed
		le(uint16(len(name)))
		le(uint16(0)) // extra
		buf.Write(name)
		buf.Write(e.Content)
		index = append(index, p)
	}

	cdStart := buf.Len()
	for _, p := range index {
		le(uint32(centralSig))
		le(uint16(zipVersion)) // made by
		le(uint16(zipVersion)) // needed
		le(uint16(0))          // flags
		le(uint16(0))          // method
		le(uint16(0))          // mod time
		le(uint16(0))          // mod date
		le(p.crc)
		le(p.size)
		le(p.size)
		le(uint16(len(p.name)))
		le(uint16(0)) // extra
		le(uint16(0)) // comment
		le(uint16(0)) // disk start
		le(uint16(0)) // internal attrs
		le(uint32(0)) // external attrs
		le(p.offset)
		buf.Write(p.name)
	}
	cdSize := buf.Len() - cdStart
	if uint64(buf.Len()) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	le(uint32(endSig))
	le(uint16(0)) // this disk
	le(uint16(0)) // central directory disk
	le(uint16(len(index)))
	le(uint16(len(index)))
	le(uint32(cdSize))
	le(uint32(cdStart))
	le(uint16(0)) // comment
	return buf.Bytes(), nil
}

// Size returns the byte length Build would produce for entries.
func Size(entries []Entry) int {
	n := endRecordLen
	for _, e := range entries {
		n += localHeaderLen + centralHeaderLen + 2*len(e.Name) + len(e.Content)
	}
	return n
}
