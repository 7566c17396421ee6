package signature

import (
	"maps"
	"slices"
)

// DefaultModel is the model whose color scheme is used for unrecognized models.
const DefaultModel = "claude-opus-4-5"

// ColorScheme is the palette used to draw a signature.
type ColorScheme struct {
	Primary    string `json:"primary"`    // edges and overlay outlines
	Secondary  string `json:"secondary"`  // node markers
	Background string `json:"background"` // canvas fill
}

var schemes = map[string]ColorScheme{
	"claude-opus-4-5":   {Primary: "#9333EA", Secondary: "#E879F9", Background: "#FAF5FF"},
	"claude-sonnet-4-5": {Primary: "#3B82F6", Secondary: "#06B6D4", Background: "#EFF6FF"},
	"claude-haiku-4-5":  {Primary: "#10B981", Secondary: "#34D399", Background: "#ECFDF5"},
	"gpt-4":             {Primary: "#F97316", Secondary: "#FBBF24", Background: "#FFF7ED"},
	"gpt-4-turbo":       {Primary: "#EF4444", Secondary: "#FB7185", Background: "#FEF2F2"},
	"llama-3":           {Primary: "#14B8A6", Secondary: "#0EA5E9", Background: "#F0FDFA"},
}

// SchemeFor returns the color scheme for model, falling back to the
// [DefaultModel] scheme when model is unknown.
func SchemeFor(model string) ColorScheme {
	if s, ok := schemes[model]; ok {
		return s
	}
	return schemes[DefaultModel]
}

// KnownModel reports whether model has its own color scheme.
func KnownModel(model string) bool {
	_, ok := schemes[model]
	return ok
}

// Models returns the known model names in sorted order.
func Models() []string {
	return slices.Sorted(maps.Keys(schemes))
}
