package executil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	data := TemplateData{
		CommandName:     "launch_nuke",
		EntityType:      "Shot",
		EntityIDs:       []int{101, 102},
		PrimaryEntityID: 101,
		ProjectID:       87,
		PreCache:        true,
	}

	out, err := RenderTemplate("{{ .CommandName }} {{ .EntityType }}/{{ .PrimaryEntityID }} in {{ .ProjectID }}: {{ ids }}", data)
	require.NoError(t, err)
	assert.Equal(t, "launch_nuke Shot/101 in 87: 101,102", out)
}

func TestRenderTemplateParseError(t *testing.T) {
	_, err := RenderTemplate("{{ .Broken", TemplateData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template parse")
}

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "1,2,3", JoinIDs([]int{1, 2, 3}, ","))
	assert.Equal(t, "", JoinIDs(nil, ","))
}

func TestRunCommandShellForm(t *testing.T) {
	output, code, err := RunCommand(context.Background(), "echo entity {{ .PrimaryEntityID }}", nil, nil, TemplateData{PrimaryEntityID: 5757})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "entity 5757", strings.TrimSpace(output))
}

func TestRunCommandEnv(t *testing.T) {
	output, _, err := RunCommand(context.Background(),
		"echo $BRIDGE_PROJECT", nil,
		map[string]string{"BRIDGE_PROJECT": "{{ .ProjectID }}"},
		TemplateData{ProjectID: 87},
	)
	require.NoError(t, err)
	assert.Equal(t, "87", strings.TrimSpace(output))
}

func TestRunCommandExitCode(t *testing.T) {
	_, code, err := RunCommand(context.Background(), "exit 4", nil, nil, TemplateData{})
	require.Error(t, err)
	assert.Equal(t, 4, code)
}
