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
	"io"

	"github.com/klauspost/compress/lz4"
)

// Lz4Adapter is the fast LZ coder: lower compression ratio, fastest
// compress/decompress cycle, suited to high-throughput streams where
// permutation iteration cost dominates.
type Lz4Adapter struct {
	level lz4.CompressionLevel
}

// NewLz4 builds an lz4 adapter at the given compression level
// (lz4.Level1 when level is zero).
func NewLz4(level lz4.CompressionLevel) *Lz4Adapter {
	if level == 0 {
		level = lz4.Level1
	}
	return &Lz4Adapter{level: level}
}

func (l *Lz4Adapter) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(l.level)); err != nil {
		return nil, fail("compress", l.Name(), err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fail("compress", l.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fail("compress", l.Name(), err)
	}
	return buf.Bytes(), nil
}

func (l *Lz4Adapter) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fail("decompress", l.Name(), err)
	}
	return out, nil
}

func (l *Lz4Adapter) Name() string { return "lz4" }

// CompressBound mirrors the well-known lz4 block bound formula.
func (l *Lz4Adapter) CompressBound(srcSize int) int {
	return srcSize + (srcSize / 255) + 16
}
