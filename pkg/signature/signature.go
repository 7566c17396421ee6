package signature

import "encoding/json"

// Request holds the attributes a signature is derived from. Callers are
// expected to validate SkillsCount (1-20) and required fields; the generator
// itself only clamps the node count.
type Request struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	Theme       string `json:"theme"`
	SkillsCount int    `json:"skillsCount"`
}

// Signature is the generated artifact for one [Request].
type Signature struct {
	SVG         string `json:"svg"`
	SignatureID string `json:"signatureId"`
	Hash        int32  `json:"hash"`
}

// Generate computes the signature for req. It never fails: unknown models
// fall back to the [DefaultModel] color scheme.
func Generate(req Request) Signature {
	c := Layout(req)
	return Signature{
		SVG:         RenderSVG(c),
		SignatureID: c.SignatureID,
		Hash:        c.Hash,
	}
}

// RenderJSON exports the constellation for external renderers.
func RenderJSON(c Constellation) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
