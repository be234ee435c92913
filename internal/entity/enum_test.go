package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldType_IsValid(t *testing.T) {
	valid := []FieldType{FieldTypeSignature, FieldTypeText, FieldTypeDate}
	for _, ft := range valid {
		t.Run(string(ft)+" is valid", func(t *testing.T) {
			assert.True(t, ft.IsValid())
		})
	}

	t.Run("INVALID is not valid", func(t *testing.T) {
		assert.False(t, FieldType("signatur").IsValid())
	})
	t.Run("empty string is not valid", func(t *testing.T) {
		assert.False(t, FieldType("").IsValid())
	})
}

func TestFileUsageType_IsValid(t *testing.T) {
	valid := []FileUsageType{
		FileUsageCreated, FileUsageUpdated, FileUsageViewed, FileUsageStartstamp,
		FileUsageEndstamp, FileUsageReminderEmailSent, FileUsageDescribeFields,
		FileUsageAgreeTOS, FileUsageAllFieldsFilled,
	}
	for _, ft := range valid {
		t.Run(string(ft)+" is valid", func(t *testing.T) {
			assert.True(t, ft.IsValid())
		})
	}

	t.Run("INVALID is not valid", func(t *testing.T) {
		assert.False(t, FileUsageType("bogus").IsValid())
	})
}

func TestFieldUsageType_IsValid(t *testing.T) {
	valid := []FieldUsageType{FieldUsageFilled, FieldUsageEmpty, FieldUsageAgreeTOS}
	for _, ft := range valid {
		t.Run(string(ft)+" is valid", func(t *testing.T) {
			assert.True(t, ft.IsValid())
		})
	}

	t.Run("INVALID is not valid", func(t *testing.T) {
		assert.False(t, FieldUsageType("bogus").IsValid())
	})
}
