package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int", "int"},
		{"list<string>", "list<string>"},
		{"map< string , string >", "map<string,string>"},
		{"map<string,list<int>>", "map<string,list<int>>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseTypeRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.String())
		})
	}
}

func TestParseTypeRefErrors(t *testing.T) {
	for _, input := range []string{"", "list<string", "list<>", "map<string,>", "int>"} {
		_, err := ParseTypeRef(input)
		assert.Error(t, err, input)
	}
}

func TestTypeRefPredicates(t *testing.T) {
	str := NewTypeRef(TypeString)

	assert.True(t, NewTypeRef(TypeBoolean).IsBoolean())
	assert.True(t, NewTypeRef(TypeInt).IsInteger())
	assert.True(t, NewTypeRef(TypeLong).IsInteger())
	assert.False(t, str.IsInteger())
	assert.True(t, str.IsString())
	assert.True(t, NewTypeRef(TypeList, str).IsStringList())
	assert.False(t, NewTypeRef(TypeList, NewTypeRef(TypeInt)).IsStringList())
	assert.False(t, NewTypeRef(TypeList).IsStringList())
	assert.True(t, NewTypeRef(TypeMap, str, str).IsStringMap())
	assert.False(t, NewTypeRef(TypeMap, str, NewTypeRef(TypeInt)).IsStringMap())

	assert.True(t, TypeRef{}.IsZero())
	assert.False(t, str.IsZero())
}
