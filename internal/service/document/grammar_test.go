package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/esigncore/internal/entity"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantOK     bool
		wantType   entity.FieldType
		wantParent string
	}{
		{"plain signature", "{signature}", true, entity.FieldTypeSignature, ""},
		{"plain text", "{ text }", true, entity.FieldTypeText, ""},
		{"date with parent", "{date:signature1}", true, entity.FieldTypeDate, "signature1"},
		{"date with spaced parent", "{ date : signature 1 }", true, entity.FieldTypeDate, "signature 1"},
		{"not a reference", "just some text", false, "", ""},
		{"unbalanced braces", "{signature", false, "", ""},
		{"empty value", "", false, "", ""},
		{"fullwidth braces fold to ascii", "｛signature｝", true, entity.FieldTypeSignature, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseField("field1", tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, "field1", got.Name)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantParent, got.Parent)
		})
	}
}
