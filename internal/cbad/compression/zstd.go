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
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdAdapter is the general-purpose dictionary coder: the default,
// required adapter for detectors that do not override the compression
// choice.
type ZstdAdapter struct {
	level zstd.EncoderLevel

	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	initErr error
}

// NewZstd builds a zstd adapter at the given level (zstd.SpeedDefault when
// level is zero).
func NewZstd(level zstd.EncoderLevel) *ZstdAdapter {
	if level == 0 {
		level = zstd.SpeedDefault
	}
	return &ZstdAdapter{level: level}
}

func (z *ZstdAdapter) init() {
	z.once.Do(func() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(z.level))
		if err != nil {
			z.initErr = err
			return
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			z.initErr = err
			return
		}
		z.encoder = enc
		z.decoder = dec
	})
}

func (z *ZstdAdapter) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	z.init()
	if z.initErr != nil {
		return nil, fail("compress", z.Name(), z.initErr)
	}
	return z.encoder.EncodeAll(data, make([]byte, 0, z.CompressBound(len(data)))), nil
}

func (z *ZstdAdapter) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	z.init()
	if z.initErr != nil {
		return nil, fail("decompress", z.Name(), z.initErr)
	}
	out, err := z.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fail("decompress", z.Name(), err)
	}
	return out, nil
}

func (z *ZstdAdapter) Name() string { return "zstd" }

// CompressBound mirrors zstd's own worst-case bound formula so callers can
// pre-size buffers without a dependency on internal encoder state.
func (z *ZstdAdapter) CompressBound(srcSize int) int {
	return srcSize + (srcSize >> 8) + 512
}
