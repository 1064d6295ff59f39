package record

type FieldInfo struct {
	fieldType   FieldType
	fieldLength int
}

// Type returns the field's type.
func (fi FieldInfo) Type() FieldType { return fi.fieldType }

// Length returns the declared length of the field (meaningful for varchar).
func (fi FieldInfo) Length() int { return fi.fieldLength }

// Schema describes the columns of a table or of an operator's output,
// in declaration order.
type Schema struct {
	fields    []string
	fieldInfo map[string]FieldInfo
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{
		fields:    make([]string, 0),
		fieldInfo: make(map[string]FieldInfo),
	}
}

func (s *Schema) AddField(name string, fieldType FieldType, length int) {
	if _, exists := s.fieldInfo[name]; !exists {
		s.fields = append(s.fields, name)
	}
	s.fieldInfo[name] = FieldInfo{
		fieldType:   fieldType,
		fieldLength: length,
	}
}

func (s *Schema) AddIntField(name string) {
	s.AddField(name, IntType, 8)
}

func (s *Schema) AddFloatField(name string) {
	s.AddField(name, FloatType, 8)
}

func (s *Schema) AddBoolField(name string) {
	s.AddField(name, BoolType, 1)
}

func (s *Schema) AddStringField(name string, length int) {
	s.AddField(name, VarcharType, length)
}

func (s *Schema) Copy(other *Schema, fieldName string) {
	if info, exists := other.fieldInfo[fieldName]; exists {
		s.AddField(fieldName, info.fieldType, info.fieldLength)
	}
}

func (s *Schema) CopyAll(other *Schema) {
	for _, field := range other.fields {
		info := other.fieldInfo[field]
		s.AddField(field, info.fieldType, info.fieldLength)
	}
}

// Fields returns a copy of the field names slice, in declaration order.
func (s *Schema) Fields() []string {
	fields := make([]string, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// FieldCount returns the number of fields in the schema.
func (s *Schema) FieldCount() int {
	return len(s.fields)
}

// FieldIndex returns the position of a field, or -1 if absent.
func (s *Schema) FieldIndex(fieldName string) int {
	for i, f := range s.fields {
		if f == fieldName {
			return i
		}
	}
	return -1
}

// GetFieldInfo returns the field information for a given field name.
func (s *Schema) GetFieldInfo(fieldName string) (FieldInfo, bool) {
	info, exists := s.fieldInfo[fieldName]
	return info, exists
}

// Type returns the type of a field. The second result is false if the
// field does not exist.
func (s *Schema) Type(fieldName string) (FieldType, bool) {
	info, exists := s.fieldInfo[fieldName]
	return info.fieldType, exists
}

// Length returns the declared length of a field.
func (s *Schema) Length(fieldName string) int {
	if info, exists := s.fieldInfo[fieldName]; exists {
		return info.fieldLength
	}
	return 0
}

// HasField checks if the schema contains the specified field.
func (s *Schema) HasField(fieldName string) bool {
	_, exists := s.fieldInfo[fieldName]
	return exists
}
