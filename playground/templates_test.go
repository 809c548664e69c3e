package playground

import (
	"testing"

	"github.com/FlorianRuen/devhub/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogue(t *testing.T) {
	catalogue, err := LoadCatalogue()
	require.NoError(t, err)

	templates := catalogue.All()
	require.Len(t, templates, 3)

	ids := make([]string, 0, len(templates))
	for _, tpl := range templates {
		ids = append(ids, tpl.ID)
		assert.NotEmpty(t, tpl.Name)
		assert.NotEmpty(t, tpl.Description)
		assert.Contains(t, tpl.Code.HTML, "<!DOCTYPE html>")
		assert.NotEmpty(t, tpl.Code.CSS)
		assert.NotEmpty(t, tpl.Code.JS)
	}
	assert.Equal(t, []string{"blank", "landing-page", "todo-app"}, ids)

	todo, err := catalogue.Get("todo-app")
	require.NoError(t, err)
	assert.Equal(t, "Todo App", todo.Name)
	assert.Contains(t, todo.Code.JS, "function addTodo()")
	assert.Contains(t, todo.Code.JS, "${todo.text}")

	blank, err := catalogue.Get("blank")
	require.NoError(t, err)
	assert.Equal(t, "// Add your JavaScript here\nconsole.log(\"Hello, World!\");", blank.Code.JS)
}

func TestCatalogue_GetUnknown(t *testing.T) {
	catalogue, err := LoadCatalogue()
	require.NoError(t, err)

	_, err = catalogue.Get("react-app")
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}

func TestParseCatalogue_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not yaml", raw: "- id: [unclosed"},
		{name: "missing id", raw: "- name: Nameless\n"},
		{name: "duplicate id", raw: "- id: a\n  name: A\n- id: a\n  name: B\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogue([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestCatalogue_AllReturnsCopy(t *testing.T) {
	catalogue, err := LoadCatalogue()
	require.NoError(t, err)

	templates := catalogue.All()
	templates[0].Name = "changed"

	first, err := catalogue.Get(templates[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", first.Name)
}
