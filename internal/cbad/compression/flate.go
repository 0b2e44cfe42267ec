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
	"compress/flate"
	"io"
)

// FlateAdapter wraps the standard library's unframed DEFLATE coder: the
// "generic deflate" variant the detection core names alongside zstd and
// lz4, with no gzip container overhead.
type FlateAdapter struct {
	level int
}

// NewFlate builds a flate adapter at the given compression level
// (flate.DefaultCompression when level is zero).
func NewFlate(level int) *FlateAdapter {
	if level == 0 {
		level = flate.DefaultCompression
	}
	return &FlateAdapter{level: level}
}

func (f *FlateAdapter) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, f.level)
	if err != nil {
		return nil, fail("compress", f.Name(), err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fail("compress", f.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fail("compress", f.Name(), err)
	}
	return buf.Bytes(), nil
}

func (f *FlateAdapter) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fail("decompress", f.Name(), err)
	}
	return out, nil
}

func (f *FlateAdapter) Name() string { return "flate" }

func (f *FlateAdapter) CompressBound(srcSize int) int {
	return srcSize + (srcSize / 1000) + 12
}
