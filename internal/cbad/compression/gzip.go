// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compression

import (
	"bytes"
	"compress/gzip"
	"io"
)

// GzipAdapter wraps the standard library's framed DEFLATE coder. No
// third-party wrapper is warranted here: gzip is DEFLATE plus a fixed
// header, and compress/gzip is the reference implementation every other
// Go gzip library ultimately delegates to.
type GzipAdapter struct {
	level int
}

// NewGzip builds a gzip adapter at the given compression level
// (gzip.DefaultCompression when level is zero).
func NewGzip(level int) *GzipAdapter {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return &GzipAdapter{level: level}
}

func (g *GzipAdapter) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fail("compress", g.Name(), err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fail("compress", g.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fail("compress", g.Name(), err)
	}
	return buf.Bytes(), nil
}

func (g *GzipAdapter) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fail("decompress", g.Name(), err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fail("decompress", g.Name(), err)
	}
	return out, nil
}

func (g *GzipAdapter) Name() string { return "gzip" }

// CompressBound is a conservative estimate; gzip's actual worst case is
// close to input size plus a small constant overhead.
func (g *GzipAdapter) CompressBound(srcSize int) int {
	return srcSize + (srcSize / 1000) + 18
}
