// Package units defines the components of the example game and registers
// them for blueprint materialization.
package units

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robo-corg/prints/assets"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/registry"
	"github.com/robo-corg/prints/value"
	"github.com/robo-corg/prints/world"
)

// ErrNoAssets is returned when a component needs the asset server resource
// and the world has none.
var ErrNoAssets = pkg.NewError("no asset server resource")

type (
	// Name is the display name of a unit.
	Name string

	// Hitpoints is a unit's remaining health.
	Hitpoints float32

	// Attacks lists the attacks a unit can perform.
	Attacks []Attack
)

// Attack is a kind of attack. Blueprints name it by variant.
type Attack int

const (
	FireBreath Attack = iota
	Scratch
	Bark
)

var attackNames = []string{"FireBreath", "Scratch", "Bark"}

func (a Attack) String() string { return value.VariantName(a, attackNames...) }

func (a *Attack) UnmarshalText(b []byte) (err error) {
	*a, err = value.ParseVariant[Attack](string(b), attackNames...)

	return err
}

func (a Attack) MarshalText() ([]byte, error) {
	if s := a.String(); s != "" {
		return []byte(s), nil
	}

	return nil, fmt.Errorf("invalid attack %d", int(a))
}

// ScenePath is the blueprint form of a [Scene]: a path to a scene asset.
type ScenePath string

// Scene refers to a scene asset by handle.
type Scene struct {
	Path   string
	Handle assets.Handle
}

// Transform places an entity in the world.
type Transform struct {
	X, Y, Z float32
	Scale   float32
}

// Default returns the identity transform.
func (Transform) Default() Transform { return Transform{Scale: 1} }

// Visibility controls whether an entity is drawn.
type Visibility struct {
	Visible bool
}

func (Visibility) Default() Visibility { return Visibility{Visible: true} }

// Position is a unit's location on the map. It is not registered and is
// materialized through the world's type catalog.
type Position struct {
	X, Y float32
}

// Register adds the example components to r:
//
//	Name       string
//	Hitpoints  number
//	Attacks    [FireBreath | Scratch | Bark, ...]
//	Scene      path to a scene asset; also attaches Transform and Visibility
func Register(r *registry.Registry) error {
	for _, err := range []error{
		registry.RegisterTyped[Name](r, "Name"),
		registry.RegisterTyped[Hitpoints](r, "Hitpoints"),
		registry.RegisterTyped[Attacks](r, "Attacks"),
		r.Register("Scene",
			registry.MapComponent(registry.Decoded[ScenePath](), loadScene).
				DependsOn(registry.Default[Transform]()).
				DependsOn(registry.Default[Visibility]()),
		),
	} {
		if err != nil {
			return err
		}
	}

	return nil
}

// RegisterTypes adds the unregistered example components to the catalog
// of w, so blueprints can name them without a strategy.
func RegisterTypes(w *world.World) {
	world.RegisterType[Position](w, "Position")
	world.RegisterType[Transform](w, "Transform")
}

// loadScene resolves a scene path to its asset handle.
func loadScene(host registry.Host, p ScenePath) (Scene, error) {
	srv, ok := registry.Resource[*assets.Server](host)
	if !ok {
		return Scene{}, ErrNoAssets
	}

	path := strings.TrimSpace(string(p))
	if path == "" {
		return Scene{}, pkg.ErrInvalidArgument.
			Wrap(errors.New("empty scene path")).
			With(slog.String("component", "Scene"))
	}

	return Scene{Path: path, Handle: srv.Handle(path)}, nil
}
