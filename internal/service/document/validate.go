package document

import (
	"github.com/rendis/esigncore/internal/entity"
)

// validFieldTypes lists the descriptor types a reference/parent field may
// declare. Only `date` is supported today (§4.4 step 6).
var validFieldTypes = map[entity.FieldType]bool{
	entity.FieldTypeDate: true,
}

// validateSignators checks every signator-declared field exists in the
// uploaded PDF, parses to a descriptor, and carries an acceptable type
// (§4.4 step 5).
func validateSignators(signators map[string]*string, descriptors map[string]entity.FieldDescriptor) error {
	for name := range signators {
		desc, ok := descriptors[name]
		if !ok {
			return entity.ErrUnknownSignatorField
		}
		if !desc.Type.IsValid() {
			return entity.ErrInvalidFieldType
		}
		if desc.HasParent() && desc.Type != entity.FieldTypeDate {
			return entity.ErrParentMustBeDate
		}
	}
	return nil
}

// referenceFields returns every parsed descriptor that declares a parent.
func referenceFields(descriptors map[string]entity.FieldDescriptor) []entity.FieldDescriptor {
	var refs []entity.FieldDescriptor
	for _, d := range descriptors {
		if d.HasParent() {
			refs = append(refs, d)
		}
	}
	return refs
}

// validateReferences checks every reference field's parent name exists
// among the parsed descriptors and that the reference field's own declared
// type is one of validFieldTypes (§4.4 step 6) — dependents are
// signature/text-agnostic; the only supported dependent kind is `date`.
func validateReferences(refs []entity.FieldDescriptor, descriptors map[string]entity.FieldDescriptor) error {
	for _, ref := range refs {
		if _, ok := descriptors[ref.Parent]; !ok {
			return entity.ErrUnknownParentField
		}
		if !validFieldTypes[ref.Type] {
			return entity.ErrInvalidFieldType
		}
	}
	return nil
}
