package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type persona struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestParseJSONStripsMarkdown(t *testing.T) {
	response := "Here is the persona:\n```json\n{\"name\": \"Sarah\", \"age\": 34}\n```\nLet me know if you need more."

	got, err := ParseJSON[persona](response)
	require.NoError(t, err)
	assert.Equal(t, persona{Name: "Sarah", Age: 34}, got)
}

func TestParseJSONErrors(t *testing.T) {
	_, err := ParseJSON[persona]("no json here")
	assert.Error(t, err)

	_, err = ParseJSON[persona]("{broken")
	assert.Error(t, err)
}

func TestParseJSONListArray(t *testing.T) {
	response := "Sure!\n```json\n[{\"name\": \"Sarah\", \"age\": 34}, {\"name\": \"Lee\", \"age\": 41}]\n```"

	got, err := ParseJSONList[persona](response)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sarah", got[0].Name)
	assert.Equal(t, "Lee", got[1].Name)
}

func TestParseJSONListWrapsBareObject(t *testing.T) {
	// Models sometimes ignore the "array" instruction when asked for one
	// item; a bare object still yields a single-element list.
	got, err := ParseJSONList[persona](`{"name": "Sarah", "age": 34}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sarah", got[0].Name)
}

func TestParseJSONListObjectBeforeArray(t *testing.T) {
	// The object comes first, so the trailing bracket noise must not win.
	response := `{"name": "Sarah", "age": 34} (see [1])`
	got, err := ParseJSONList[persona](response)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParseJSONListGenericMaps(t *testing.T) {
	response := `[{"name": "Sarah", "goals": ["a", "b"], "demographics": {"location": "Berlin"}}]`
	got, err := ParseJSONList[map[string]interface{}](response)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sarah", got[0]["name"])
	assert.Len(t, got[0]["goals"], 2)
}

func TestParseJSONListErrors(t *testing.T) {
	_, err := ParseJSONList[persona]("nothing structured")
	assert.Error(t, err)

	_, err = ParseJSONList[persona]("[{]")
	assert.Error(t, err)
}
