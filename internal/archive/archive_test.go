/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"strings"
	"testing"
)

func sample() []Entry {
	return []Entry{
		Text("index.html", "<!DOCTYPE html><html><body><p>hi</p></body></html>"),
		Text("styles.css", "body { margin: 0; }\n"),
		Text("assets/empty.txt", ""),
	}
}

func TestBuildReadsBackWithArchiveZip(t *testing.T) {
	entries := sample()
	data, err := Build(entries)
	if err != nil {
		t.Fatal(err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("archive/zip rejected output: %v", err)
	}
	if len(r.File) != len(entries) {
		t.Fatalf("files = %d, want %d", len(r.File), len(entries))
	}
	for i, f := range r.File {
		want := entries[i]
		if f.Name != want.Name || f.Method != zip.Store {
			t.Fatalf("entry %d: name=%q method=%d", i, f.Name, f.Method)
		}
		if f.CRC32 != crc32.ChecksumIEEE(want.Content) || f.UncompressedSize64 != uint64(len(want.Content)) {
			t.Fatalf("entry %d: crc/size mismatch", i)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if !bytes.Equal(got, want.Content) {
			t.Fatalf("%s content = %q", f.Name, got)
		}
	}
}

func TestBuildIsReproducible(t *testing.T) {
	a, _ := Build(sample())
	b, _ := Build(sample())
	if !bytes.Equal(a, b) {
		t.Fatalf("same input produced different bytes")
	}
	rev := sample()
	rev[0], rev[1] = rev[1], rev[0]
	c, _ := Build(rev)
	if bytes.Equal(a, c) {
		t.Fatalf("entry order must affect the bytes")
	}
}

func TestLayout(t *testing.T) {
	entries := sample()
	data, _ := Build(entries)
	if len(data) != Size(entries) {
		t.Fatalf("len = %d, Size = %d", len(data), Size(entries))
	}
	if binary.LittleEndian.Uint32(data) != localSig {
		t.Fatalf("missing local header signature")
	}
	end := data[len(data)-endRecordLen:]
	if binary.LittleEndian.Uint32(end) != endSig {
		t.Fatalf("end record not at tail")
	}
	count := binary.LittleEndian.Uint16(end[8:])
	total := binary.LittleEndian.Uint16(end[10:])
	cdSize := binary.LittleEndian.Uint32(end[12:])
	cdStart := binary.LittleEndian.Uint32(end[16:])
	if count != 3 || total != 3 {
		t.Fatalf("entry counts = %d/%d", count, total)
	}
	if int(cdStart)+int(cdSize) != len(data)-endRecordLen {
		t.Fatalf("central directory does not end at the end record")
	}
	if binary.LittleEndian.Uint32(data[cdStart:]) != centralSig {
		t.Fatalf("central directory offset wrong")
	}
	// Second local header sits right after the first entry's content.
	second := localHeaderLen + len(entries[0].Name) + len(entries[0].Content)
	if binary.LittleEndian.Uint32(data[second:]) != localSig {
		t.Fatalf("second entry misplaced")
	}
}

func TestEmptyArchive(t *testing.T) {
	data, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != endRecordLen {
		t.Fatalf("len = %d", len(data))
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive unreadable: %v", err)
	}
}

func TestLimits(t *testing.T) {
	long := Text(strings.Repeat("n", 70000), "x")
	if _, err := Build([]Entry{long}); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	many := make([]Entry, 70000)
	if _, err := Build(many); !errors.Is(err, ErrTooManyEntries) {
		t.Fatalf("expected ErrTooManyEntries, got %v", err)
	}
}
