package message

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPromptTemplate_Builtin(t *testing.T) {
	for _, name := range BuiltinTemplateNames() {
		tmpl, err := GetPromptTemplate(name)
		require.NoError(t, err, name)
		assert.Contains(t, tmpl, "{{.Diff}}")
		assert.Contains(t, tmpl, "{{.Files}}")
	}
}

func TestGetPromptTemplate_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "name: terse\ndescription: short prompts\ntemplate: |\n  Summarize {{.Files}} in one line.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tmpl, err := GetPromptTemplate(path)
	require.NoError(t, err)
	assert.Contains(t, tmpl, "Summarize {{.Files}}")
}

func TestGetPromptTemplate_RawFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte("Describe {{.Diff}} briefly."), 0o644))

	tmpl, err := GetPromptTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "Describe {{.Diff}} briefly.", tmpl)
}

func TestGetPromptTemplate_Unknown(t *testing.T) {
	_, err := GetPromptTemplate("no-such-template")
	assert.Error(t, err)
}

func TestRenderTemplate(t *testing.T) {
	got, err := RenderTemplate("Role={{.Role}} Files={{.Files}}", TemplateData{Role: "Dev", Files: "a.go"})
	require.NoError(t, err)
	assert.Equal(t, "Role=Dev Files=a.go", got)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", TemplateData{})
	assert.Error(t, err)
}
