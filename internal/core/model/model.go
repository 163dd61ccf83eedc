package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches one segment of a hub model ID. Segments start with an
// alphanumeric and may continue with dots, dashes, and underscores.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ID identifies a hub model as "owner/name".
type ID struct {
	owner string
	name  string
}

// NewID validates and creates a model ID from its "owner/name" form.
func NewID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ID{}, fmt.Errorf("model ID cannot be empty")
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return ID{}, fmt.Errorf("model ID must be in owner/name format, got %q", raw)
	}
	for _, part := range parts {
		if !namePattern.MatchString(part) {
			return ID{}, fmt.Errorf("model ID segment %q contains invalid characters", part)
		}
	}

	return ID{owner: parts[0], name: parts[1]}, nil
}

// Owner returns the namespace segment of the ID.
func (id ID) Owner() string {
	return id.owner
}

// Name returns the model name segment of the ID.
func (id ID) Name() string {
	return id.name
}

// String returns the canonical "owner/name" form.
func (id ID) String() string {
	return id.owner + "/" + id.name
}

// IsZero reports whether the ID is the empty value.
func (id ID) IsZero() bool {
	return id.owner == "" && id.name == ""
}

// DirName returns the directory the hub cache stores this model under:
// "models--{owner}--{name}".
func (id ID) DirName() string {
	return "models--" + id.owner + "--" + id.name
}

// ConfigFileName returns the server config file derived from the model name:
// lowercased, dashes folded to underscores, with a ".json" extension.
func (id ID) ConfigFileName() string {
	return strings.ToLower(strings.ReplaceAll(id.name, "-", "_")) + ".json"
}

// MarshalJSON encodes the ID as its "owner/name" string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses an "owner/name" string.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalYAML encodes the ID as its "owner/name" string.
func (id ID) MarshalYAML() (interface{}, error) {
	return id.String(), nil
}

// Type classifies what kind of workload a model serves.
type Type string

const (
	TypeLLM Type = "llm"
	TypeASR Type = "asr"
)

func (t Type) String() string {
	return string(t)
}

// IsLLM reports whether the model serves text generation.
func (t Type) IsLLM() bool {
	return t == TypeLLM
}

// llmHints and asrHints drive the name-based classification. LLM hints are
// checked first, so a name carrying both kinds resolves to LLM.
var (
	llmHints = []string{"llm", "gpt", "llama", "mistral", "qwen", "deepseek"}
	asrHints = []string{"voice", "asr", "whisper"}
)

// DetectType classifies a model by its ID alone. Unknown names default to
// LLM, which is the common case for hub models served locally.
func DetectType(id ID) Type {
	lower := strings.ToLower(id.String())
	for _, hint := range llmHints {
		if strings.Contains(lower, hint) {
			return TypeLLM
		}
	}
	for _, hint := range asrHints {
		if strings.Contains(lower, hint) {
			return TypeASR
		}
	}
	return TypeLLM
}

// TypeFromPipelineTag maps a hub API pipeline tag to a model type. The
// second return is false for tags the server cannot host.
func TypeFromPipelineTag(tag string) (Type, bool) {
	switch tag {
	case "text-generation", "text2text-generation":
		return TypeLLM, true
	case "automatic-speech-recognition", "audio-to-text":
		return TypeASR, true
	default:
		return "", false
	}
}
