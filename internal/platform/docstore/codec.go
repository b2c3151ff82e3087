// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// compress packs a document for the cache.
func compress(body []byte) []byte {
	return encoder.EncodeAll(body, make([]byte, 0, len(body)/3))
}

// decompress unpacks a cached document.
func decompress(payload []byte) ([]byte, error) {
	body, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("docstore: corrupt cache payload: %w", err)
	}
	return body, nil
}
