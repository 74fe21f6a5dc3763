package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformedResponse marks a composition payload that failed parsing or
// schema validation. It is a data-shape problem: retrying the model call is
// unlikely to help, so the run fails immediately.
var ErrMalformedResponse = errors.New("malformed composition response")

// systemInstructions is the fixed persona contract sent with every
// composition request. The strict JSON shape it demands is enforced by
// compositionSchema below; models that wrap the payload in code fences are
// tolerated.
const systemInstructions = "You are an AI acting as a historical figure. " +
	"1. Identify the historical character from the user's input. " +
	"2. Determine their gender ('male' or 'female'). " +
	"3. Write a dramatic, first-person monologue (100-200 words) answering the user. " +
	"Output strictly valid JSON: " +
	`{"character_name": "Name", "gender": "male/female", "monologue": "Text"} ` +
	"Do not include markdown or code blocks."

// compositionSchemaJSON accepts exactly the three composition fields.
// gender is not required: a missing or unknown value falls back to the
// default voice instead of failing the run.
const compositionSchemaJSON = `{
	"type": "object",
	"properties": {
		"character_name": {"type": "string", "minLength": 1},
		"gender": {"type": "string"},
		"monologue": {"type": "string", "minLength": 1}
	},
	"required": ["character_name", "monologue"],
	"additionalProperties": false
}`

var compositionSchema = mustCompileSchema(compositionSchemaJSON, "composition.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Composition is the validated output of the composition stage.
type Composition struct {
	CharacterName string `json:"character_name"`
	Gender        string `json:"gender"`
	Monologue     string `json:"monologue"`
}

// ParseComposition strips any surrounding code-fence markup from the raw
// model output, parses it as JSON, and validates it against the strict
// three-field schema. Anything else is ErrMalformedResponse.
func ParseComposition(raw string) (Composition, error) {
	clean := stripCodeFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(clean), &doc); err != nil {
		return Composition{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := compositionSchema.Validate(doc); err != nil {
		return Composition{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var comp Composition
	if err := json.Unmarshal([]byte(clean), &comp); err != nil {
		return Composition{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return comp, nil
}

func stripCodeFences(raw string) string {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}
