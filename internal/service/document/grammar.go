package document

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/rendis/esigncore/internal/entity"
)

// referenceGrammar matches a raw field value of the shape `{ type }` or
// `{ type : parent }`. Group 1 is the type, group 2 the optional parent.
var referenceGrammar = regexp.MustCompile(
	`^\s*\{\s*([\w\d._,?+=\-&*^%$#@! ]+?)\s*(?::\s*([\w\d. ]+?)\s*)?\}\s*$`,
)

// parseField matches value against the reference grammar and returns the
// parsed descriptor. A value that doesn't match yields (zero, false): the
// field is non-fillable.
func parseField(name, value string) (entity.FieldDescriptor, bool) {
	folded := width.Fold.String(value)
	m := referenceGrammar.FindStringSubmatch(folded)
	if m == nil {
		return entity.FieldDescriptor{}, false
	}
	return entity.FieldDescriptor{
		Name:   name,
		Type:   entity.FieldType(strings.TrimSpace(m[1])),
		Parent: strings.TrimSpace(m[2]),
	}, true
}
