package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/esigncore/internal/entity"
)

func descriptors() map[string]entity.FieldDescriptor {
	return map[string]entity.FieldDescriptor{
		"signature1": {Name: "signature1", Type: entity.FieldTypeSignature},
		"text1":      {Name: "text1", Type: entity.FieldTypeText},
		"date1":      {Name: "date1", Type: entity.FieldTypeDate, Parent: "signature1"},
	}
}

func TestValidateSignators(t *testing.T) {
	email := "signer@example.com"

	t.Run("known fields pass", func(t *testing.T) {
		err := validateSignators(map[string]*string{"signature1": &email, "text1": nil}, descriptors())
		assert.NoError(t, err)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		err := validateSignators(map[string]*string{"missing": nil}, descriptors())
		assert.ErrorIs(t, err, entity.ErrUnknownSignatorField)
	})

	t.Run("reference field as signator is fine when type is date", func(t *testing.T) {
		err := validateSignators(map[string]*string{"date1": nil}, descriptors())
		assert.NoError(t, err)
	})
}

func TestReferenceFields(t *testing.T) {
	refs := referenceFields(descriptors())
	assert.Len(t, refs, 1)
	assert.Equal(t, "date1", refs[0].Name)
}

func TestValidateReferences(t *testing.T) {
	t.Run("parent exists and type is date", func(t *testing.T) {
		err := validateReferences(referenceFields(descriptors()), descriptors())
		assert.NoError(t, err)
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		bad := descriptors()
		bad["date1"] = entity.FieldDescriptor{Name: "date1", Type: entity.FieldTypeDate, Parent: "ghost"}
		err := validateReferences(referenceFields(bad), bad)
		assert.ErrorIs(t, err, entity.ErrUnknownParentField)
	})

	t.Run("non-date reference type rejected", func(t *testing.T) {
		bad := descriptors()
		bad["date1"] = entity.FieldDescriptor{Name: "date1", Type: entity.FieldTypeText, Parent: "signature1"}
		err := validateReferences(referenceFields(bad), bad)
		assert.ErrorIs(t, err, entity.ErrInvalidFieldType)
	})
}
