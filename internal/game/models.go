/*
Package game
File: models.go
Description:
    Defines the data structures (Structs) used by the part container workshop.
    This file serves as the "schema" for the application, mapping directly to
    the 'parts.yaml' catalog and the JSON API responses.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// EquipmentTag is the capability tag that marks a part as something a container can house.
const EquipmentTag = "equipment"

// Vec3 is a plain [X, Y, Z] triple as written in YAML (e.g. "position: [0, 1.2, 0]").
type Vec3 [3]float32

// Bounds is an authored axis-aligned box in the mesh's local space (meters).
type Bounds struct {
	Min Vec3 `yaml:"min" json:"min"`
	Max Vec3 `yaml:"max" json:"max"`
}

// MeshData is the renderable geometry attached to a scene node.
// Either Vertices or Bounds may be given; a mesh with neither is ignored by the scan.
type MeshData struct {
	Vertices []Vec3  `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	Bounds   *Bounds `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

// SceneNode is one transform in a part's model hierarchy.
type SceneNode struct {
	Name     string       `yaml:"name" json:"name"`                             // Transform name ("model" marks the model root)
	Position Vec3         `yaml:"position" json:"position"`                     // Local offset from the parent (meters)
	Rotation Vec3         `yaml:"rotation" json:"rotation"`                     // Local Euler rotation (degrees)
	Scale    Vec3         `yaml:"scale" json:"scale"`                           // Local scale; zero components count as 1
	Disabled bool         `yaml:"disabled,omitempty" json:"disabled,omitempty"` // Inactive game objects are not rendered
	Mesh     *MeshData    `yaml:"mesh,omitempty" json:"mesh,omitempty"`         // Optional renderable geometry
	Children []*SceneNode `yaml:"children,omitempty" json:"children,omitempty"` // Child transforms
}

// AttachNode is a named mounting point on a part.
type AttachNode struct {
	ID       string `yaml:"id" json:"id"`             // Node ID (e.g., "top", "bottom")
	Position Vec3   `yaml:"position" json:"position"` // Offset from the part root (meters)
	Size     int    `yaml:"size" json:"size"`         // Attach node size class
}

// Variant is an alternate configuration of a part's attach nodes and visible game objects.
type Variant struct {
	Name        string          `yaml:"name" json:"name"`
	AttachNodes []AttachNode    `yaml:"attach_nodes,omitempty" json:"attach_nodes,omitempty"` // Overrides by ID
	GameObjects map[string]bool `yaml:"game_objects,omitempty" json:"game_objects,omitempty"` // Node name -> enabled
}

// Attachment mounts another catalog part on one of this part's attach nodes.
type Attachment struct {
	Node    string `yaml:"node" json:"node"`                           // Attach node ID on the parent
	Part    string `yaml:"part" json:"part"`                           // Catalog key of the child part
	Variant string `yaml:"variant,omitempty" json:"variant,omitempty"` // Child variant (empty = default)
}

// ResourceTemplate is a resource pool as authored on a part definition.
type ResourceTemplate struct {
	Name      string  `yaml:"name" json:"name"`             // Resource name (e.g., "LiquidFuel")
	Amount    float64 `yaml:"amount" json:"amount"`         // Initial fill
	MaxAmount float64 `yaml:"max_amount" json:"max_amount"` // Capacity
}

// PartDefinition is the immutable template describing a buildable part.
type PartDefinition struct {
	Key             string             `yaml:"key" json:"key"`                                               // Unique ID (e.g., "fuelCell.small")
	Title           string             `yaml:"title" json:"title"`                                           // Display name
	Mass            float64            `yaml:"mass" json:"mass"`                                             // Dry mass (tonnes)
	Cost            float64            `yaml:"cost" json:"cost"`                                             // Purchase price (funds)
	Volume          float64            `yaml:"volume,omitempty" json:"volume,omitempty"`                     // Authored volume override (liters); 0 = measure geometry
	ContainerVolume float64            `yaml:"container_volume,omitempty" json:"container_volume,omitempty"` // Internal capacity (liters); > 0 makes this a container
	Tags            []string           `yaml:"tags,omitempty" json:"tags,omitempty"`                         // Capability tags (e.g., "equipment")
	TechRequired    string             `yaml:"tech_required,omitempty" json:"tech_required,omitempty"`       // Tech node that unlocks this part
	Resources       []ResourceTemplate `yaml:"resources,omitempty" json:"resources,omitempty"`
	AttachNodes     []AttachNode       `yaml:"attach_nodes,omitempty" json:"attach_nodes,omitempty"`
	Variants        []Variant          `yaml:"variants,omitempty" json:"variants,omitempty"`
	Attached        []Attachment       `yaml:"attached,omitempty" json:"attached,omitempty"`
	Root            *SceneNode         `yaml:"root,omitempty" json:"-"`                                      // The part's root transform
}

// Catalog is the root configuration struct, mapping to the entire 'parts.yaml' file.
type Catalog struct {
	TechUnlocked []string         `yaml:"tech_unlocked"` // Tech nodes the player has researched
	Parts        []PartDefinition `yaml:"parts"`
}

// ResourcePool is a named amount/maxAmount pair owned by a part.
type ResourcePool struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	MaxAmount float64 `json:"max_amount"`
}

// PartInstance is one live copy of a PartDefinition, with its own resource pools.
// Instances are compared by pointer identity; ID exists only for addressing them over the API.
type PartInstance struct {
	ID        string          `json:"id"`
	Def       *PartDefinition `json:"-"`
	Variant   string          `json:"variant,omitempty"` // Selected variant (empty = default)
	Resources []ResourcePool  `json:"resources"`
}

// ModifierChangeWhen tells the costing pipeline how often cost/mass modifiers must be re-queried.
type ModifierChangeWhen string

const (
	// Fixed modifiers never change after the part is created.
	Fixed ModifierChangeWhen = "FIXED"
	// Constantly modifiers must be recomputed on every query.
	Constantly ModifierChangeWhen = "CONSTANTLY"
)
