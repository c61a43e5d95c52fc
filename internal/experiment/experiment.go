// Package experiment turns sweep coordinates into runnable trials and maps
// episode kinds to their runners.
package experiment

import (
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/physics"
)

// Trial is one fully resolved episode configuration. It owns copies of its
// settings and material, so trials never share mutable state.
type Trial struct {
	Episode   string
	Shape     Shape
	Settings  dynamo.Settings
	Material  physics.Material
	Iteration int
	// StaticKeys identify the trial in progress lines, logs and result rows.
	StaticKeys []dynamo.Field
}

// Description is the body plan of the trial: its shape filled with its material.
func (t Trial) Description() physics.RobotDescription {
	return physics.Uniform(t.Shape.Mask, t.Material)
}

// Target is what a binding writes to.
type Target struct {
	Settings *dynamo.Settings
	Material *physics.Material
}

func (t *Trial) Target() Target {
	return Target{Settings: &t.Settings, Material: &t.Material}
}
