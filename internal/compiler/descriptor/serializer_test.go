package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

func sampleStages() []*StageDescriptor {
	return []*StageDescriptor{
		{
			ClassName: "com.acme.FooSource",
			Name:      "foo",
			Version:   "1",
			Label:     "Foo",
			Type:      hierarchy.Source,
			Configs: []ConfigDescriptor{
				{Name: "delimiter", FieldName: "delimiter", Kind: String{}, Label: "Delimiter", DefaultValue: ","},
			},
			OnError: OnErrorToError,
		},
		{
			ClassName: "com.acme.BarTarget",
			Name:      "bar",
			Version:   "1",
			Type:      hierarchy.Target,
			Configs: []ConfigDescriptor{
				{Name: "fields", FieldName: "fields", Kind: Model{Model: FieldSelector{}}},
			},
			OnError: OnErrorStopPipeline,
		},
	}
}

func TestSerializeManifestDeterministic(t *testing.T) {
	first, err := SerializeManifest(sampleStages())
	require.NoError(t, err)
	second, err := SerializeManifest(sampleStages())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(string(first), "[\n  {\n    \"className\": \"com.acme.FooSource\""))
	assert.True(t, strings.HasSuffix(string(first), "]\n"))
}

func TestSerializeManifestRoundTrip(t *testing.T) {
	data, err := SerializeManifest(sampleStages())
	require.NoError(t, err)

	stages, err := ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, sampleStages(), stages)
}

func TestSerializeEmptyManifest(t *testing.T) {
	data, err := SerializeManifest(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestParseManifestError(t *testing.T) {
	_, err := ParseManifest([]byte("{"))
	assert.Error(t, err)
}

func TestBundleLocation(t *testing.T) {
	pkg, name := BundleLocation("com.acme.stages.FooSource")
	assert.Equal(t, "com/acme/stages", pkg)
	assert.Equal(t, "FooSource-bundle.properties", name)

	pkg, name = BundleLocation("Bare")
	assert.Equal(t, "", pkg)
	assert.Equal(t, "Bare-bundle.properties", name)
}

func TestStageBundle(t *testing.T) {
	s := sampleStages()[0]
	s.Description = "Reads\nlines from C:\\data"
	s.Configs = append(s.Configs, ConfigDescriptor{Name: "port", Kind: Integer{}, Label: "Port", Description: "TCP port"})

	want := "stage.label=Foo\n" +
		"stage.description=Reads\\nlines from C:\\\\data\n" +
		"config.delimiter.label=Delimiter\n" +
		"config.delimiter.description=\n" +
		"config.port.label=Port\n" +
		"config.port.description=TCP port\n"
	assert.Equal(t, want, string(StageBundle(s)))
}

func TestErrorBundle(t *testing.T) {
	e := &ErrorDescriptor{
		EnumName: "com.acme.Errors",
		Literals: []ErrorLiteral{
			{Name: "Z_LAST", Message: "declared first"},
			{Name: "A_FIRST", Message: "declared\rsecond"},
		},
	}

	assert.Equal(t, "Z_LAST=declared first\nA_FIRST=declared\\rsecond\n", string(ErrorBundle(e)))
}
