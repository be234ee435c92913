package entity

// FieldType discriminates the three kinds of fillable fields a document can
// declare. Dependent fields (Field.Parent != nil) are always FieldTypeDate.
type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeText      FieldType = "text"
	FieldTypeDate      FieldType = "date"
)

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeSignature, FieldTypeText, FieldTypeDate:
		return true
	default:
		return false
	}
}

func (t FieldType) String() string {
	return string(t)
}

// FileUsageType enumerates the document-level audit events.
type FileUsageType string

const (
	FileUsageCreated            FileUsageType = "created"
	FileUsageUpdated            FileUsageType = "updated"
	FileUsageViewed             FileUsageType = "viewed"
	FileUsageStartstamp         FileUsageType = "startstamp"
	FileUsageEndstamp           FileUsageType = "endstamp"
	FileUsageReminderEmailSent  FileUsageType = "reminder-email-sent"
	FileUsageDescribeFields     FileUsageType = "describe-fields"
	FileUsageAgreeTOS           FileUsageType = "agree-tos"
	FileUsageAllFieldsFilled    FileUsageType = "all-fields-filled"
)

func (t FileUsageType) IsValid() bool {
	switch t {
	case FileUsageCreated, FileUsageUpdated, FileUsageViewed, FileUsageStartstamp,
		FileUsageEndstamp, FileUsageReminderEmailSent, FileUsageDescribeFields,
		FileUsageAgreeTOS, FileUsageAllFieldsFilled:
		return true
	default:
		return false
	}
}

func (t FileUsageType) String() string {
	return string(t)
}

// FieldUsageType enumerates the field-level audit events.
type FieldUsageType string

const (
	FieldUsageFilled   FieldUsageType = "filled"
	FieldUsageEmpty    FieldUsageType = "empty"
	FieldUsageAgreeTOS FieldUsageType = "agree-tos"
)

func (t FieldUsageType) IsValid() bool {
	switch t {
	case FieldUsageFilled, FieldUsageEmpty, FieldUsageAgreeTOS:
		return true
	default:
		return false
	}
}

func (t FieldUsageType) String() string {
	return string(t)
}

// AuditStatus is the normalized status label used in the merged audit stream
// (see entity.AuditEntry), distinct from the raw FileUsageType/FieldUsageType
// stored in the database: endstamp rows are remapped to stamp_success /
// stamp_failed depending on whether a file was produced.
type AuditStatus string

const (
	AuditStatusStampSuccess AuditStatus = "stamp_success"
	AuditStatusStampFailed  AuditStatus = "stamp_failed"
)
