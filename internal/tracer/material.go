package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Material describes how a surface responds to light under the Phong model,
// plus the reflection and refraction terms used by World.
type Material struct {
	Color           geom.Color
	Pattern         Pattern
	Ambient         float64
	Diffuse         float64
	Specular        float64
	Shininess       float64
	Reflective      float64
	Transparency    float64
	RefractiveIndex float64
}

// Common refractive indices.
const (
	Vacuum  = 1.0
	Air     = 1.00029
	Water   = 1.333
	Glass   = 1.5
	Diamond = 2.417
)

func DefaultMaterial() Material {
	return Material{
		Color:           geom.White,
		Ambient:         0.1,
		Diffuse:         0.9,
		Specular:        0.9,
		Shininess:       200,
		RefractiveIndex: Vacuum,
	}
}

// PointLight is a light with no size.
type PointLight struct {
	Position  geom.Tuple
	Intensity geom.Color
}

func NewPointLight(position geom.Tuple, intensity geom.Color) PointLight {
	return PointLight{Position: position, Intensity: intensity}
}

// Lighting shades point on obj as seen along eyev. A shadowed point only
// receives the ambient term.
func (m Material) Lighting(obj Shape, light PointLight, point, eyev, normalv geom.Tuple, inShadow bool) geom.Color {
	surface := m.Color
	if m.Pattern != nil {
		surface = PatternAtShape(m.Pattern, obj, point)
	}
	effective := surface.Blend(light.Intensity)
	ambient := effective.Mul(m.Ambient)
	if inShadow {
		return ambient
	}

	lightv := light.Position.Sub(point).Normalize()
	lightDotNormal := lightv.Dot(normalv)
	if lightDotNormal < 0 {
		return ambient
	}
	diffuse := effective.Mul(m.Diffuse * lightDotNormal)

	specular := geom.Black
	reflectv := lightv.Neg().Reflect(normalv)
	if reflectDotEye := reflectv.Dot(eyev); reflectDotEye > 0 {
		factor := math.Pow(reflectDotEye, m.Shininess)
		specular = light.Intensity.Mul(m.Specular * factor)
	}
	return ambient.Add(diffuse).Add(specular)
}
