// Package report encodes the structured analyze report
// (internal/analysis.Report) into the machine-readable formats
// spec.md §4.7 leaves to pretty-printing's "interface": JSON,
// validated in-process against an embedded schema before it ships,
// and a compact canonical CBOR encoding.
package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fort77/fort77/internal/analysis"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	compiler := jsonschema.NewCompiler()
	const url = "schema://fort77-report.json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("adding report schema: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling report schema: %w", err)
	}
	compiledSchema = s
	return s, nil
}

// EncodeJSON marshals report to indented JSON and validates it against
// the embedded schema before returning it, so a malformed report fails
// loudly instead of shipping bad JSON (spec.md carries no such format
// itself; this is the domain-stack wiring SPEC_FULL.md adds).
func EncodeJSON(r analysis.Report) ([]byte, error) {
	data, err := json.MarshalIndent(canonicalize(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}

	s, err := schema()
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("re-parsing report for validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("report failed schema validation: %w", err)
	}
	return data, nil
}

// EncodeCBOR marshals report to a canonical (deterministic) CBOR
// encoding, mirroring the teacher's canonicalize-then-encode plan
// hashing pipeline.
func EncodeCBOR(r analysis.Report) ([]byte, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("building canonical CBOR encoder: %w", err)
	}
	data, err := mode.Marshal(canonicalize(r))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding report: %w", err)
	}
	return data, nil
}

// canonicalize copies r's Occurrences map (visiting its names in
// sorted order) so the encoders never share the caller's map; the
// bytes are stable across runs because encoding/json and canonical
// CBOR both emit map keys in sorted order, even though
// internal/analysis builds Occurrences as a Go map. It also replaces every nil slice/map with
// an empty one: the embedded schema requires "type": "array"/"object"
// for these fields, but a nil Go slice or map marshals to JSON `null`,
// which fails that check — a unit with no unaccounted variables, no
// labels, or no formal params would otherwise fail validation.
func canonicalize(r analysis.Report) analysis.Report {
	out := r
	if out.UnitNames == nil {
		out.UnitNames = []string{}
	}
	out.Units = make([]analysis.UnitReport, len(r.Units))
	copy(out.Units, r.Units)
	for i := range out.Units {
		u := out.Units[i]
		if u.FormalParams == nil {
			u.FormalParams = []string{}
		}
		if u.Labels == nil {
			u.Labels = []analysis.LabelReport{}
		}
		for j := range u.Labels {
			if u.Labels[j].Occurrences == nil {
				u.Labels[j].Occurrences = []int{}
			}
		}
		if u.LabelTimeline == nil {
			u.LabelTimeline = []analysis.Interval{}
		}
		if u.VariableTimeline == nil {
			u.VariableTimeline = []analysis.Interval{}
		}
		if u.Variables.UnaccountedFor == nil {
			u.Variables.UnaccountedFor = []string{}
		}
		if u.Variables.NeverOccurred == nil {
			u.Variables.NeverOccurred = []string{}
		}

		sorted := make(map[string][]int, len(u.Variables.Occurrences))
		names := make([]string, 0, len(u.Variables.Occurrences))
		for name := range u.Variables.Occurrences {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			occ := u.Variables.Occurrences[name]
			if occ == nil {
				occ = []int{}
			}
			sorted[name] = occ
		}
		u.Variables.Occurrences = sorted

		out.Units[i] = u
	}
	return out
}
