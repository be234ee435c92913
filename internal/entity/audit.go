package entity

import "time"

// AuditEntry is one normalized row of the merged audit stream served by C7.
// Status mirrors the underlying usage type except for endstamp, which is
// remapped to stamp_success/stamp_failed depending on whether a file was
// produced.
type AuditEntry struct {
	Status    string
	Timestamp time.Time
	Data      map[string]any
}

// FieldDescriptor is the parsed result of matching a raw field value against
// the reference grammar `\{<type>(:<parent>)?\}`. A raw value that doesn't
// match the grammar yields no descriptor (the field is non-fillable).
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Parent string // empty when not a dependent reference
}

func (d FieldDescriptor) HasParent() bool {
	return d.Parent != ""
}
