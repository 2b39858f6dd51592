package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strob0t/TaskForge/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{"minimal", CreateRequest{ProjectID: "p1", Name: "build"}, false},
		{"missing project", CreateRequest{Name: "build"}, true},
		{"missing name", CreateRequest{ProjectID: "p1"}, true},
		{"blank name", CreateRequest{ProjectID: "p1", Name: " \t"}, true},
		{"nodes object", CreateRequest{ProjectID: "p1", Name: "x", Nodes: json.RawMessage(`{"a":1}`)}, true},
		{"edges string", CreateRequest{ProjectID: "p1", Name: "x", Edges: json.RawMessage(`"nope"`)}, true},
		{"nodes broken", CreateRequest{ProjectID: "p1", Name: "x", Nodes: json.RawMessage(`[1,`)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateRequestDefaultsGraph(t *testing.T) {
	req := CreateRequest{ProjectID: "p1", Name: "build", Edges: json.RawMessage("null")}
	require.NoError(t, req.Validate())
	assert.JSONEq(t, `[]`, string(req.Nodes))
	assert.JSONEq(t, `[]`, string(req.Edges))
	assert.False(t, req.IsDefault)
}

func TestCreateRequestKeepsGraphStructure(t *testing.T) {
	nodes := `[ {"id": "n1", "z": 1, "a": {"deep": [1, 2]}}, {"id": "n2"} ]`
	req := CreateRequest{ProjectID: "p1", Name: "build", Nodes: json.RawMessage(nodes)}
	require.NoError(t, req.Validate())

	assert.Equal(t, `[{"id":"n1","z":1,"a":{"deep":[1,2]}},{"id":"n2"}]`, string(req.Nodes))
	assert.JSONEq(t, nodes, string(req.Nodes))
}

func TestUpdateRequest(t *testing.T) {
	name := "  renamed "
	nodes := json.RawMessage(`[{"id":"n1"}]`)
	yes := true
	patch := UpdateRequest{Name: &name, Nodes: &nodes, IsDefault: &yes}
	require.NoError(t, patch.Validate())
	assert.True(t, patch.SetsDefault())

	w := Workflow{Name: "old", Description: "keep", Nodes: json.RawMessage(`[]`), Edges: json.RawMessage(`[]`)}
	patch.Apply(&w)
	assert.Equal(t, "renamed", w.Name)
	assert.Equal(t, "keep", w.Description)
	assert.Equal(t, `[{"id":"n1"}]`, string(w.Nodes))
	assert.Equal(t, `[]`, string(w.Edges))
	assert.True(t, w.IsDefault)
}

func TestUpdateRequestFalseDefault(t *testing.T) {
	no := false
	patch := UpdateRequest{IsDefault: &no}
	assert.False(t, patch.SetsDefault())
	assert.False(t, (&UpdateRequest{}).SetsDefault())
}

func TestUpdateRequestRejects(t *testing.T) {
	empty := ""
	obj := json.RawMessage(`{}`)
	for _, patch := range []UpdateRequest{{Name: &empty}, {Nodes: &obj}, {Edges: &obj}} {
		assert.ErrorIs(t, patch.Validate(), domain.ErrValidation)
	}
}
