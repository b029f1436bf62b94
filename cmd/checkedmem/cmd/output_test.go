package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResult(t *testing.T) {
	res := CopyResult{
		Source: hexAddr(0x7f0000000fe0),
		Len:    64,
		Fault: &Fault{
			Addr:   hexAddr(0x7f0000001000),
			Offset: 32,
			Kind:   "address not mapped",
			Access: "read",
			Signal: "segmentation fault",
		},
	}

	t.Run("json", func(t *testing.T) {
		outputFormat = "json"
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, res))
		assert.Contains(t, buf.String(), `"source": "0x7f0000000fe0"`)
		assert.Contains(t, buf.String(), `"offset": 32`)
		assert.NotContains(t, buf.String(), `"error"`)
	})

	t.Run("yaml", func(t *testing.T) {
		outputFormat = "yaml"
		defer func() { outputFormat = "json" }()
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, res))
		assert.Contains(t, buf.String(), "0x7f0000000fe0")
		assert.Contains(t, buf.String(), "  offset: 32\n")
		assert.Contains(t, buf.String(), "ok: false\n")
	})
}
