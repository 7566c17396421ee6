// Package signature generates deterministic visual signatures for agent identities.
//
// # Overview
//
// A signature is derived from a [Request] (name, model, theme and skill count) and
// consists of three parts:
//
//   - Hash: a 32-bit rolling polynomial hash of the request
//   - SignatureID: the absolute hash as 8 upper-case hex characters
//   - SVG: a 300×200 "constellation" graphic drawn from a seeded random stream
//
// Generation is split into two stages, mirroring a layout/sink pipeline:
//
//	c := signature.Layout(req)     // positions, edges, overlay shapes
//	svg := signature.RenderSVG(c)  // serialized markup
//
// [Generate] runs both stages and is what most callers want:
//
//	sig := signature.Generate(signature.Request{
//	    Name:        "Atlas",
//	    Model:       "gpt-4",
//	    Theme:       "explorer",
//	    SkillsCount: 6,
//	})
//	fmt.Println(sig.SignatureID)
//
// # Determinism
//
// Identical requests always produce byte-identical output: the generator reads no
// clock, no environment and no external entropy. The random stream is
// frac(sin(seed+index)*10000) evaluated in IEEE double precision. Reproducing a
// graphic bit-for-bit in another runtime requires that runtime's sin to agree with
// Go's [math.Sin] to the last bit; identifiers and hashes do not depend on sin.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use. The color scheme table is
// built once at package initialization and never mutated.
package signature
