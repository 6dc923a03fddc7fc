package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		inferred string
		want     string
		ok       bool
	}{
		{"accept inferred", "\n", "Head", "Head", true},
		{"accept fallback", "\n", "", "Unknown", true},
		{"override", "  Neck \n", "Head", "Neck", true},
		{"discard", "-\n", "Head", "", false},
		{"end of input", "", "Head", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newPromptConfirmer(strings.NewReader(tt.input), &out, "Unknown")
			got, ok := p.ConfirmSlot(tt.inferred, "/mods/shapes/head/hat.json")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "hat.json")
		})
	}
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "model_split.json"), defaultOut(filepath.Join("a", "b", "model.json"), "_split", ".json"))
	assert.Equal(t, "model.yaml", defaultOut("model.json", "", ".yaml"))
	assert.Equal(t, []string{"Hat", "Scarf"}, splitList(" Hat, ,Scarf,"))
	assert.Nil(t, splitList(""))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "shapetool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attachments:\n  preset: vintage_story\n"), 0644))
	return path
}

func TestAttachExportAndDeleteSection(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	doc := scene.NewDocument("model")
	body := scene.NewGroup("Body", math.Zero)
	require.NoError(t, doc.Graph.Add(body, nil))
	require.NoError(t, doc.Graph.Add(scene.NewGroup("Head", math.V3(0, 24, 0)), body))
	docPath := filepath.Join(dir, "model.yaml")
	require.NoError(t, scene.SaveDocument(doc, docPath))

	shapePath := filepath.Join(dir, "shapes", "head", "hood.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(shapePath), 0755))
	require.NoError(t, formats.WriteShapeFile(shapePath, &formats.Shape{
		TextureWidth:  16,
		TextureHeight: 16,
		Elements: []formats.Element{{
			Name:           "Hood",
			From:           math.V3(0, 2, 0),
			To:             math.V3(0, 2, 0),
			StepParentName: "Head",
			Children: []formats.Element{{
				Name: "HoodCloth",
				To:   math.V3(2, 2, 2),
				Faces: map[formats.Direction]*formats.Face{
					formats.North: {Texture: "#skin", UV: [4]float64{0, 0, 2, 2}},
				},
			}},
		}},
	}))

	dressed := filepath.Join(dir, "dressed.yaml")
	require.NoError(t, cmdAttach([]string{"-config", cfgPath, "-o", dressed, docPath, shapePath}))

	got, err := scene.LoadDocument(dressed)
	require.NoError(t, err)
	hood := got.Graph.FindGroupByName("Hood")
	require.NotNil(t, hood)
	require.NotNil(t, hood.Parent())
	assert.Equal(t, "Head", hood.Parent().Name)
	assert.Equal(t, "Head", hood.ClothingSlot)
	require.Equal(t, 1, hood.NumChildren())
	assert.Equal(t, "Head", hood.Children()[0].ClothingSlot)

	out := filepath.Join(dir, "hood_out.json")
	require.NoError(t, cmdExport([]string{"-config", cfgPath, "-attach", "Hood", dressed, out}))
	shape, err := formats.ParseShapeFile(out)
	require.NoError(t, err)
	require.Len(t, shape.Elements, 1)
	assert.Equal(t, "Hood", shape.Elements[0].Name)
	assert.Equal(t, "Head", shape.Elements[0].StepParentName)

	require.NoError(t, cmdSections([]string{"-config", cfgPath, "-delete", "Head", dressed}))
	got, err = scene.LoadDocument(dressed)
	require.NoError(t, err)
	for _, n := range got.Graph.All() {
		assert.NotEqual(t, "HoodCloth", n.Name)
	}

	assert.Error(t, cmdSections([]string{"-config", cfgPath, "-delete", "Foot", dressed}))
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	in := filepath.Join(dir, "crate.json")
	pivot := math.V3(8, 0, 8)
	require.NoError(t, formats.WriteShapeFile(in, &formats.Shape{
		TextureWidth:  32,
		TextureHeight: 32,
		Textures:      map[string]string{"wood": "block/wood"},
		Elements: []formats.Element{{
			Name:           "Crate",
			From:           pivot,
			To:             pivot,
			RotationOrigin: &pivot,
			Children: []formats.Element{{
				Name: "Box",
				To:   math.V3(4, 4, 4),
				Faces: map[formats.Direction]*formats.Face{
					formats.Up: {Texture: "#wood", UV: [4]float64{0, 0, 4, 4}},
				},
			}},
		}},
	}))

	require.NoError(t, cmdImport([]string{"-config", cfgPath, in}))
	docPath := filepath.Join(dir, "crate.yaml")
	doc, err := scene.LoadDocument(docPath)
	require.NoError(t, err)
	assert.Equal(t, 32, doc.TextureWidth)
	assert.Equal(t, "block/wood", doc.Textures["wood"])
	require.NotNil(t, doc.Graph.FindGroupByName("Crate"))

	out := filepath.Join(dir, "crate_out.json")
	require.NoError(t, cmdExport([]string{"-config", cfgPath, docPath, out}))
	shape, err := formats.ParseShapeFile(out)
	require.NoError(t, err)
	require.Len(t, shape.Elements, 1)
	assert.Equal(t, "Crate", shape.Elements[0].Name)
	require.Len(t, shape.Elements[0].Children, 1)
	assert.Equal(t, math.V3(4, 4, 4), shape.Elements[0].Children[0].To)
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	out := filepath.Join(dir, "effective", "config.yaml")

	require.NoError(t, cmdConfig([]string{"-config", cfgPath, "-preset", "custom", "-o", out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "preset: custom")
	assert.Contains(t, string(data), "fallback_slot: Unknown")
}
