/*
Package game
File: scene.go
Description:
    Scene-graph helpers for the volume estimator.
    Converts authored transforms into math32 matrices, clones a part's
    geometry into an owned working copy, and applies a variant to that copy.
*/

package game

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/jinzhu/copier"
)

// ModelRootName is the transform under which a part's renderable meshes live.
const ModelRootName = "model"

// maxAttachDepth bounds recursion through attached child parts.
const maxAttachDepth = 16

func vec3(v Vec3) math32.Vector3 {
	return math32.Vec3(v[0], v[1], v[2])
}

// scaleOf treats zero components as 1 so that an omitted "scale" means identity.
func scaleOf(v Vec3) math32.Vector3 {
	s := vec3(v)
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	if s.Z == 0 {
		s.Z = 1
	}
	return s
}

// localMatrix builds the node's transform relative to its parent.
func localMatrix(n *SceneNode) *math32.Matrix4 {
	m := math32.Identity4()
	rot := math32.NewQuatEuler(vec3(n.Rotation).MulScalar(math32.DegToRadFactor))
	m.SetTransform(vec3(n.Position), rot, scaleOf(n.Scale))
	return m
}

// worldMatrix returns parent * local(n).
func worldMatrix(parent *math32.Matrix4, n *SceneNode) *math32.Matrix4 {
	w := math32.Identity4()
	w.MulMatrices(parent, localMatrix(n))
	return w
}

// translated returns parent * translate(pos).
func translated(parent *math32.Matrix4, pos Vec3) *math32.Matrix4 {
	t := math32.Identity4()
	t.SetTransform(vec3(pos), math32.NewQuatEuler(math32.Vector3{}), math32.Vec3(1, 1, 1))
	w := math32.Identity4()
	w.MulMatrices(parent, t)
	return w
}

// meshBox returns the local bounding box of a mesh, or false when it carries no usable data.
func meshBox(m *MeshData) (math32.Box3, bool) {
	if m == nil {
		return math32.Box3{}, false
	}
	if len(m.Vertices) > 0 {
		pts := make([]math32.Vector3, len(m.Vertices))
		for i, v := range m.Vertices {
			pts[i] = vec3(v)
		}
		var b math32.Box3
		b.SetFromPoints(pts)
		return b, true
	}
	if m.Bounds != nil {
		b := math32.Box3{Min: vec3(m.Bounds.Min), Max: vec3(m.Bounds.Max)}
		if b.IsEmpty() {
			return b, false
		}
		return b, true
	}
	return math32.Box3{}, false
}

// findNode does a depth-first search for a transform by name.
func findNode(n *SceneNode, name string) *SceneNode {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, name); found != nil {
			return found
		}
	}
	return nil
}

// walkNodes visits every node in the tree.
func walkNodes(n *SceneNode, fn func(*SceneNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		walkNodes(c, fn)
	}
}

// workingCopy is an owned, detached copy of a part's geometry with a variant applied.
// It is never registered anywhere, so dropping it discards it.
type workingCopy struct {
	root        *SceneNode
	attachNodes map[string]AttachNode
}

// newWorkingCopy deep-copies the part's scene graph and applies the variant to the copy.
// The definition itself is left untouched.
func newWorkingCopy(def *PartDefinition, v *Variant) (*workingCopy, error) {
	wc := &workingCopy{attachNodes: make(map[string]AttachNode, len(def.AttachNodes))}
	for _, an := range def.AttachNodes {
		wc.attachNodes[an.ID] = an
	}

	if def.Root != nil {
		wc.root = &SceneNode{}
		if err := copier.CopyWithOption(wc.root, def.Root, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("clone %s: %w", def.Key, err)
		}
	}

	if v == nil {
		return wc, nil
	}
	for _, an := range v.AttachNodes {
		wc.attachNodes[an.ID] = an
	}
	if len(v.GameObjects) > 0 {
		walkNodes(wc.root, func(n *SceneNode) {
			if enabled, ok := v.GameObjects[n.Name]; ok {
				n.Disabled = !enabled
			}
		})
	}
	return wc, nil
}

// ResolveVariant picks the variant to measure: the named one if it exists,
// otherwise the first declared variant, or nil when the part has none.
func ResolveVariant(def *PartDefinition, name string) *Variant {
	if len(def.Variants) == 0 {
		return nil
	}
	for i := range def.Variants {
		if def.Variants[i].Name == name {
			return &def.Variants[i]
		}
	}
	return &def.Variants[0]
}
