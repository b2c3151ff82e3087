// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestCodec_RoundTrip verifies that cached payloads decompress to the original document.
*/
func TestCodec_RoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte(`{"id":440,"name":"Team Fortress 2"},`), 64)

	payload := compress(body)
	assert.Less(t, len(payload), len(body))

	restored, err := decompress(payload)
	require.NoError(t, err)
	assert.Equal(t, body, restored)

	_, err = decompress([]byte("not zstd"))
	assert.Error(t, err)
}
