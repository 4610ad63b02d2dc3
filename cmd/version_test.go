package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	for _, v := range []string{"dev", "v1.2.3", "v2.0.0+build.7", ""} {
		t.Run("version "+v, func(t *testing.T) {
			withVersion(t, v)

			var out, errOut bytes.Buffer
			cmd := newVersionCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Equal(t, "mcp-kong version "+v+"\n", out.String())
			assert.Empty(t, errOut.String())
		})
	}
}

func TestVersionCmd_Help(t *testing.T) {
	cmd := newVersionCmd()
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print the version number of mcp-kong", cmd.Short)
	assert.Contains(t, cmd.Long, "mcp-kong")
}
