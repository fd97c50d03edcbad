package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "port flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresAnalysis(t *testing.T) {
	setupTestServices(t, &Services{AnalysisErr: domain.ErrConfiguration})

	_, err := executeCommand(t, "mcp", "serve")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
