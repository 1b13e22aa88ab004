package workflow

// Canonical target identifiers of the built-in definition.
const (
	TargetClean  = "clean"
	TargetBuild  = "build"
	TargetTest   = "test"
	TargetRun    = "run"
	TargetRender = "render"
	TargetTDD    = "tdd"
)

// Paths shared by the built-in targets.
const (
	CanvasFile     = "canvas.ppm"
	BuildDir       = "bin"
	CanvasBinary   = "bin/canvas"
	CanvasPackage  = "./cmd/canvas"
	DefaultID      = "rayforge"
	defaultDisplay = "rayforge render pipeline"
)

// DefaultDefinition returns the target graph used when a project has no
// rayforge.yaml. render runs after run, run after build, build after clean.
func DefaultDefinition() Definition {
	return Definition{
		ID:          DefaultID,
		Name:        defaultDisplay,
		Description: "Build, test and render the canvas.",
		Default:     []string{TargetClean, TargetTest, TargetRender},
		Targets: []TargetRef{
			{
				ID:          TargetClean,
				Action:      "clean",
				Description: "Remove rendered images and build outputs",
				Config: ActionConfig{
					"patterns": []any{"*.ppm"},
					"paths":    []any{BuildDir},
				},
			},
			{
				ID:          TargetBuild,
				Action:      "exec",
				Description: "Compile the renderer in release mode",
				DependsOn:   []string{TargetClean},
				Config: ActionConfig{
					"command": "go build -trimpath -ldflags='-s -w' -o " + CanvasBinary + " " + CanvasPackage,
				},
				Outputs: []string{CanvasBinary},
			},
			{
				ID:          TargetTest,
				Action:      "exec",
				Description: "Run the test suite",
				DependsOn:   []string{TargetClean},
				Config: ActionConfig{
					"command": "go test ./...",
				},
			},
			{
				ID:          TargetRun,
				Action:      "exec",
				Description: "Render the scene to " + CanvasFile,
				DependsOn:   []string{TargetBuild},
				Config: ActionConfig{
					"command": CanvasBinary + " -o " + CanvasFile,
				},
				Outputs: []string{CanvasFile},
			},
			{
				ID:          TargetRender,
				Action:      "open",
				Description: "Open " + CanvasFile + " in the default viewer",
				DependsOn:   []string{TargetRun},
				Config: ActionConfig{
					"artifact": CanvasFile,
				},
			},
			{
				ID:          TargetTDD,
				Action:      "watch",
				Description: "Re-run the tests whenever a source file changes",
				Config: ActionConfig{
					"target": TargetTest,
					"paths":  []any{"**/*.go", "go.mod"},
				},
			},
		},
	}
}
