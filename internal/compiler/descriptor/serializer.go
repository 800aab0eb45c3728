package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
)

// Artifact naming
const (
	ManifestName = "PipelineStages.json"
	BundleSuffix = "-bundle.properties"
)

// Bundle keys
const (
	KeyStageLabel       = "stage.label"
	KeyStageDescription = "stage.description"
)

// SerializeManifest encodes the stages as an indented JSON array.
// The output is deterministic: stages keep their input order and field names are fixed.
func SerializeManifest(stages []*StageDescriptor) ([]byte, error) {
	if stages == nil {
		stages = []*StageDescriptor{}
	}
	data, err := json.MarshalIndent(stages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes a manifest produced by SerializeManifest
func ParseManifest(data []byte) ([]*StageDescriptor, error) {
	var stages []*StageDescriptor
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return stages, nil
}

// BundleLocation returns the package path and file name of the bundle for a qualified name.
// "com.acme.FooSource" maps to ("com/acme", "FooSource-bundle.properties").
func BundleLocation(qualified string) (pkg, name string) {
	pkg = strings.ReplaceAll(decl.PackageName(qualified), ".", "/")
	return pkg, decl.SimpleName(qualified) + BundleSuffix
}

// ConfigLabelKey returns the bundle key of a config label
func ConfigLabelKey(configName string) string {
	return "config." + configName + ".label"
}

// ConfigDescriptionKey returns the bundle key of a config description
func ConfigDescriptionKey(configName string) string {
	return "config." + configName + ".description"
}

// StageBundle renders the label/description bundle of a stage
func StageBundle(s *StageDescriptor) []byte {
	var b bytes.Buffer
	writeProperty(&b, KeyStageLabel, s.Label)
	writeProperty(&b, KeyStageDescription, s.Description)
	for _, c := range s.Configs {
		writeProperty(&b, ConfigLabelKey(c.Name), c.Label)
		writeProperty(&b, ConfigDescriptionKey(c.Name), c.Description)
	}
	return b.Bytes()
}

// ErrorBundle renders one line per enum literal, in declaration order
func ErrorBundle(e *ErrorDescriptor) []byte {
	var b bytes.Buffer
	for _, l := range e.Literals {
		writeProperty(&b, l.Name, l.Message)
	}
	return b.Bytes()
}

var propertyEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func writeProperty(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(propertyEscaper.Replace(value))
	b.WriteByte('\n')
}
