package game

import "go.uber.org/zap"

// box returns a node carrying an authored mesh box of the given size centered on its origin.
func box(name string, x, y, z float32) *SceneNode {
	return &SceneNode{
		Name: name,
		Mesh: &MeshData{Bounds: &Bounds{
			Min: Vec3{-x / 2, -y / 2, -z / 2},
			Max: Vec3{x / 2, y / 2, z / 2},
		}},
	}
}

// modelPart builds a part whose root holds a "model" node with the given children.
func modelPart(key string, children ...*SceneNode) PartDefinition {
	return PartDefinition{
		Key:   key,
		Title: key,
		Root: &SceneNode{
			Name:     key,
			Children: []*SceneNode{{Name: ModelRootName, Children: children}},
		},
	}
}

// item is an equippable part with an authored volume.
func item(key string, volume float64, resources ...ResourceTemplate) PartDefinition {
	return PartDefinition{
		Key:       key,
		Title:     key,
		Mass:      0.1,
		Cost:      100,
		Volume:    volume,
		Tags:      []string{EquipmentTag},
		Resources: resources,
	}
}

func fuel(amount, max float64) ResourceTemplate {
	return ResourceTemplate{Name: "Fuel", Amount: amount, MaxAmount: max}
}

// testWorkshop builds a workshop over the parts with a no-op logger.
func testWorkshop(techUnlocked []string, parts ...PartDefinition) *Workshop {
	return NewWorkshop(Catalog{TechUnlocked: techUnlocked, Parts: parts}, zap.NewNop())
}

// bay is a 100 L container part.
func bay() PartDefinition {
	return PartDefinition{Key: "bay", Title: "Cargo Bay", ContainerVolume: 100, Mass: 1, Cost: 500}
}
