package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCompareNumericCoercion(t *testing.T) {
	c, err := NewIntValue(3).Compare(NewFloatValue(3.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = NewFloatValue(2.0).Compare(NewIntValue(2))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	// booleans coerce to 0/1
	c, err = NewBoolValue(true).Compare(NewIntValue(1))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = NewBoolValue(false).Compare(NewFloatValue(0.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestValueCompareStrings(t *testing.T) {
	c, err := NewStringValue("apple").Compare(NewStringValue("banana"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = NewStringValue("pear").Compare(NewStringValue("pear"))
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestValueCompareTypeMismatch(t *testing.T) {
	_, err := NewStringValue("1").Compare(NewIntValue(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewBoolValue(true).Compare(NewStringValue("true"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValueEqualsAndHash(t *testing.T) {
	assert.True(t, NewIntValue(7).Equals(NewFloatValue(7)))
	assert.False(t, NewIntValue(7).Equals(NewFloatValue(7.1)))
	assert.False(t, NewStringValue("7").Equals(NewIntValue(7)))

	// equal-under-coercion values must hash identically (hash join contract)
	assert.Equal(t, NewIntValue(7).Hash(), NewFloatValue(7).Hash())
	assert.Equal(t, NewBoolValue(true).Hash(), NewIntValue(1).Hash())
	assert.NotEqual(t, NewStringValue("a").Hash(), NewStringValue("b").Hash())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", NewIntValue(42).String())
	assert.Equal(t, "TRUE", NewBoolValue(true).String())
	assert.Equal(t, "'hi'", NewStringValue("hi").String())
}

func TestSchemaFields(t *testing.T) {
	s := NewSchema()
	s.AddIntField("a")
	s.AddFloatField("b")
	s.AddBoolField("c")
	s.AddStringField("d", 16)

	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Fields())
	assert.Equal(t, 4, s.FieldCount())
	assert.Equal(t, 1, s.FieldIndex("b"))
	assert.Equal(t, -1, s.FieldIndex("zz"))

	ft, ok := s.Type("c")
	require.True(t, ok)
	assert.Equal(t, BoolType, ft)
	_, ok = s.Type("zz")
	assert.False(t, ok)

	assert.Equal(t, 16, s.Length("d"))
	assert.True(t, s.HasField("a"))
	assert.False(t, s.HasField("e"))
}

func TestSchemaCopyAll(t *testing.T) {
	s1 := NewSchema()
	s1.AddIntField("a")
	s1.AddStringField("b", 8)

	s2 := NewSchema()
	s2.AddIntField("c")
	s2.CopyAll(s1)

	assert.Equal(t, []string{"c", "a", "b"}, s2.Fields())
	assert.Equal(t, 8, s2.Length("b"))
}
