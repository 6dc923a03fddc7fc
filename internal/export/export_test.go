package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

func opts() Options {
	return Options{RootOffset: math.V3(8, 0, 8)}
}

// newBody builds Body(0,0,0){Torso(0,10,0){Chest cube, Head(0,22,0)}}.
func newBody(t *testing.T) (*scene.Workspace, map[string]*scene.Node) {
	t.Helper()
	doc := scene.NewDocument("body")
	g := doc.Graph
	nodes := map[string]*scene.Node{
		"Body":  scene.NewGroup("Body", math.Zero),
		"Torso": scene.NewGroup("Torso", math.V3(0, 10, 0)),
		"Chest": scene.NewCube("Chest", math.V3(-4, 10, -2), math.V3(4, 22, 2), math.V3(0, 10, 0)),
		"Head":  scene.NewGroup("Head", math.V3(0, 22, 0)),
	}
	nodes["Chest"].Faces = map[formats.Direction]formats.Face{
		formats.North: {Texture: "#skin", UV: [4]float64{0, 0, 8, 12}},
	}
	require.NoError(t, g.Add(nodes["Body"], nil))
	require.NoError(t, g.Add(nodes["Torso"], nodes["Body"]))
	require.NoError(t, g.Add(nodes["Chest"], nodes["Torso"]))
	require.NoError(t, g.Add(nodes["Head"], nodes["Torso"]))
	return scene.NewWorkspace(doc), nodes
}

func TestBuild_NoDocument(t *testing.T) {
	_, err := Build(scene.NewWorkspace(nil), opts())
	assert.ErrorIs(t, err, scene.ErrNoActiveDocument)

	_, err = BuildShape(scene.NewWorkspace(nil), opts())
	assert.ErrorIs(t, err, scene.ErrNoActiveDocument)
}

func TestBuild_RelativePositions(t *testing.T) {
	ws, _ := newBody(t)

	out, err := Build(ws, opts())
	require.NoError(t, err)
	require.Len(t, out, 1)

	body := out[0]
	assert.Equal(t, "Body", body.Name)
	assert.Equal(t, math.V3(8, 0, 8), body.From, "root offset applied")
	assert.Equal(t, body.From, body.To)
	assert.Equal(t, body.From, body.Origin())

	require.Len(t, body.Children, 1)
	torso := body.Children[0]
	assert.Equal(t, math.V3(0, 10, 0), torso.From)
	assert.Equal(t, math.V3(0, 10, 0), torso.Origin())

	require.Len(t, torso.Children, 2)
	chest := torso.Children[0]
	assert.Equal(t, "Chest", chest.Name)
	assert.Equal(t, math.V3(-4, 0, -2), chest.From)
	assert.Equal(t, math.V3(4, 12, 2), chest.To)
	assert.Equal(t, math.Zero, chest.Origin())
	require.Contains(t, chest.Faces, formats.North)
	assert.Equal(t, "#skin", chest.Faces[formats.North].Texture)

	head := torso.Children[1]
	assert.Equal(t, math.V3(0, 12, 0), head.From)
}

func TestBuild_RootOffsetSkipped(t *testing.T) {
	ws, nodes := newBody(t)
	nodes["Body"].Origin = math.V3(8, 0, 8)

	out, err := Build(ws, opts())
	require.NoError(t, err)
	assert.Equal(t, math.V3(8, 0, 8), out[0].From, "root already centred")
}

func TestBuild_Hologram(t *testing.T) {
	ws, nodes := newBody(t)
	g := ws.Active().Graph

	ref := scene.NewGroup("Reference", math.V3(5, 5, 5))
	ref.Hologram = true
	require.NoError(t, g.Add(ref, nodes["Torso"]))
	require.NoError(t, g.Add(scene.NewGroup("Promoted", math.V3(2, 12, 0)), ref))

	out, err := Build(ws, opts())
	require.NoError(t, err)

	torso := out[0].Children[0]
	var got []string
	for _, c := range torso.Children {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"Chest", "Head", "Promoted"}, got)
	assert.Equal(t, math.V3(2, 2, 0), torso.Children[2].From, "relative to the emitted container")
}

func TestBuild_TopLevelHologram(t *testing.T) {
	doc := scene.NewDocument("holo")
	ref := scene.NewGroup("Reference", math.V3(100, 0, 0))
	ref.Hologram = true
	require.NoError(t, doc.Graph.Add(ref, nil))
	require.NoError(t, doc.Graph.Add(scene.NewGroup("Inner", math.V3(2, 0, 0)), ref))

	out, err := Build(scene.NewWorkspace(doc), opts())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Inner", out[0].Name)
	assert.Equal(t, math.V3(10, 0, 8), out[0].From)
}

func TestBuild_Backdrop(t *testing.T) {
	ws, nodes := newBody(t)
	bd := scene.NewGroup("Backdrop", math.Zero)
	bd.Backdrop = true
	require.NoError(t, ws.Active().Graph.Add(bd, nil))
	nodes["Head"].Backdrop = true

	out, err := Build(ws, opts())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Children[0].Children, 1)

	o := opts()
	o.KeepBackdrops = true
	out, err = Build(ws, o)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestBuild_Locators(t *testing.T) {
	ws, nodes := newBody(t)
	loc := scene.NewLocator("Hat", math.V3(0, 30, 1))
	loc.Rotation = math.V3(0, 90, 0)
	require.NoError(t, ws.Active().Graph.Add(loc, nodes["Head"]))

	out, err := Build(ws, opts())
	require.NoError(t, err)

	head := out[0].Children[0].Children[1]
	assert.Empty(t, head.Children)
	require.Len(t, head.AttachmentPoints, 1)
	ap := head.AttachmentPoints[0]
	assert.Equal(t, "Hat", ap.Code)
	assert.Equal(t, math.V3(0, 8, 1), ap.Offset())
	assert.Equal(t, math.V3(0, 90, 0), ap.Rotation())
}

func TestBuild_RotationOmission(t *testing.T) {
	ws, nodes := newBody(t)
	nodes["Head"].Rotation = math.V3(0, 0, 15)

	out, err := Build(ws, opts())
	require.NoError(t, err)

	torso := out[0].Children[0]
	data, err := json.Marshal(torso.Children[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "rotationX")

	data, err = json.Marshal(torso.Children[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rotationZ":15`)
	assert.NotContains(t, string(data), "rotationY")
}

func TestBuild_ReordersRotation(t *testing.T) {
	ws, nodes := newBody(t)
	ws.Active().RotationOrder = math.OrderZYX
	rot := math.V3(30, 45, 0)
	nodes["Head"].Rotation = rot

	want, err := math.ReorderEuler(rot, math.OrderZYX, math.OrderXYZ)
	require.NoError(t, err)

	out, err := Build(ws, opts())
	require.NoError(t, err)
	got := out[0].Children[0].Children[1].Rotation()
	assert.True(t, got.ApproxEquals(want, 1e-9), "got %s want %s", got, want)
}

func TestBuild_StepParentAndSplit(t *testing.T) {
	ws, nodes := newBody(t)
	nodes["Head"].StepParentName = "Neck"

	o := opts()
	o.Split = true
	out, err := Build(ws, o)
	require.NoError(t, err)
	assert.Equal(t, "Neck", out[0].Children[0].Children[1].StepParentName)
}

func TestBuildShape(t *testing.T) {
	ws, _ := newBody(t)
	ws.Active().Textures["skin"] = "entity/humanoid/seraph"
	ws.Active().TextureWidth = 64

	shape, err := BuildShape(ws, opts())
	require.NoError(t, err)
	assert.Equal(t, 64, shape.TextureWidth)
	assert.Equal(t, 16, shape.TextureHeight)
	assert.Equal(t, "entity/humanoid/seraph", shape.Textures["skin"])
	assert.Len(t, shape.Elements, 1)
}

type fixedResolver map[string]string

func (r fixedResolver) ResolveStepParent(n *scene.Node) (string, bool) {
	name, ok := r[n.Name]
	return name, ok
}

func TestBuildAttachments(t *testing.T) {
	ws, _ := newBody(t)
	doc := ws.Active()

	hat := scene.NewGroup("HatHead", math.V3(0, 26, 0))
	hat.ClothingSlot = "Head"
	require.NoError(t, doc.Graph.Add(hat, nil))
	require.NoError(t, doc.Graph.Add(scene.NewCube("Brim", math.V3(-4, 26, -4), math.V3(4, 27, 4), math.V3(0, 26, 0)), hat))

	stray := scene.NewGroup("Stray", math.V3(1, 1, 1))
	require.NoError(t, doc.Graph.Add(stray, nil))

	out, err := BuildAttachments(doc, []*scene.Node{hat, stray}, fixedResolver{"HatHead": "Head"}, opts())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Head", out[0].StepParentName)
	assert.Equal(t, math.V3(0, 4, 0), out[0].From, "relative to the bone")
	require.Len(t, out[0].Children, 1)
	assert.Equal(t, math.V3(-4, 0, -4), out[0].Children[0].From)

	assert.Empty(t, out[1].StepParentName)
	assert.Equal(t, math.V3(1, 1, 1), out[1].From)
}

func TestBuildAttachments_Errors(t *testing.T) {
	_, err := BuildAttachments(nil, nil, fixedResolver{}, opts())
	assert.ErrorIs(t, err, scene.ErrNoActiveDocument)

	ws, _ := newBody(t)
	_, err = BuildAttachments(ws.Active(), []*scene.Node{scene.NewGroup("detached", math.Zero)}, fixedResolver{}, opts())
	assert.ErrorIs(t, err, scene.ErrNotInGraph)
}
