package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaJSON(t *testing.T) {
	out, err := SchemaJSON()
	require.NoError(t, err)

	// The prompt relies on the canonical field names being present.
	assert.Contains(t, out, `"phases"`)
	assert.Contains(t, out, `"guidance"`)
	assert.Contains(t, out, `"dependencies"`)
	assert.Contains(t, out, `"notes"`)
}
