package gpu

// Uniform names a uniform the renderer knows how to feed. The set is closed so
// locations can be resolved once, when a program is registered.
type Uniform uint8

const (
	UniformModel Uniform = iota
	UniformView
	UniformProjection
	UniformTexture
	UniformLightColor
	UniformLightPosition
	UniformLightIntensity
	UniformCount
)

var uniformNames = [UniformCount]string{
	UniformModel:          "uModelMat",
	UniformView:           "uViewMat",
	UniformProjection:     "uProjMat",
	UniformTexture:        "uTexture",
	UniformLightColor:     "uLightColor",
	UniformLightPosition:  "uLightPosition",
	UniformLightIntensity: "uLightIntensity",
}

// Name returns the GLSL identifier of the uniform.
func (u Uniform) Name() string {
	if u >= UniformCount {
		return ""
	}
	return uniformNames[u]
}

func (u Uniform) String() string { return u.Name() }

// UniformByName maps a GLSL identifier back to a Uniform.
func UniformByName(name string) (Uniform, bool) {
	for u, n := range uniformNames {
		if n == name {
			return Uniform(u), true
		}
	}
	return 0, false
}
