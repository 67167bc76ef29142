package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

func TestBuild_AllOutputTypes(t *testing.T) {
	tests := []struct {
		outputType model.OutputType
		wantSystem string
	}{
		{model.OutputTypeSQL, "expert SQL developer"},
		{model.OutputTypeN8N, "n8n workflow engineer"},
		{model.OutputTypeFormIO, "Form.io form designer"},
	}
	for _, tt := range tests {
		t.Run(string(tt.outputType), func(t *testing.T) {
			got, err := Build(tt.outputType, "CREATE TABLE users (id INT);", "list all users")
			require.NoError(t, err)
			require.Contains(t, got.System, tt.wantSystem)
			require.Contains(t, got.User, "CONTEXT:\nCREATE TABLE users (id INT);")
			require.Contains(t, got.User, "REQUEST:\nlist all users")
		})
	}
}

func TestBuild_UnknownOutputType(t *testing.T) {
	_, err := Build(model.OutputType("xml"), "ctx", "req")
	require.ErrorIs(t, err, appErr.ErrUnsupportedOutputType)
}
