package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/finchdb/finchdb/internal/record"
)

// Row wire format, positional per schema: int and float are 8 bytes
// big-endian, bool is 1 byte, varchar is uvarint length + bytes.

func encodeRow(schema *record.Schema, row record.Row) ([]byte, error) {
	fields := schema.Fields()
	if len(row) != len(fields) {
		return nil, fmt.Errorf("row has %d values, schema has %d fields", len(row), len(fields))
	}
	var buf []byte
	var scratch [8]byte
	for i, f := range fields {
		ft, _ := schema.Type(f)
		v := row[i]
		switch ft {
		case record.IntType:
			binary.BigEndian.PutUint64(scratch[:], uint64(v.AsInt()))
			buf = append(buf, scratch[:]...)
		case record.FloatType:
			binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v.AsFloat()))
			buf = append(buf, scratch[:]...)
		case record.BoolType:
			if v.AsBool() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		default:
			s := v.AsString()
			buf = binary.AppendUvarint(buf, uint64(len(s)))
			buf = append(buf, s...)
		}
	}
	return buf, nil
}

func decodeRow(schema *record.Schema, buf []byte) (record.Row, int, error) {
	fields := schema.Fields()
	row := make(record.Row, 0, len(fields))
	off := 0
	for _, f := range fields {
		ft, _ := schema.Type(f)
		switch ft {
		case record.IntType:
			if off+8 > len(buf) {
				return nil, 0, fmt.Errorf("short row for field %s", f)
			}
			row = append(row, record.NewIntValue(int64(binary.BigEndian.Uint64(buf[off:]))))
			off += 8
		case record.FloatType:
			if off+8 > len(buf) {
				return nil, 0, fmt.Errorf("short row for field %s", f)
			}
			row = append(row, record.NewFloatValue(math.Float64frombits(binary.BigEndian.Uint64(buf[off:]))))
			off += 8
		case record.BoolType:
			if off+1 > len(buf) {
				return nil, 0, fmt.Errorf("short row for field %s", f)
			}
			row = append(row, record.NewBoolValue(buf[off] == 1))
			off++
		default:
			n, sz := binary.Uvarint(buf[off:])
			if sz <= 0 || off+sz+int(n) > len(buf) {
				return nil, 0, fmt.Errorf("short row for field %s", f)
			}
			off += sz
			row = append(row, record.NewStringValue(string(buf[off:off+int(n)])))
			off += int(n)
		}
	}
	return row, off, nil
}

// coerceValue casts a value to the declared column type using the implicit
// numeric/boolean cast rules. Incompatible casts fail with ErrTypeMismatch.
func coerceValue(v record.Value, ft record.FieldType) (record.Value, error) {
	if v.Kind() == ft {
		return v, nil
	}
	n, numeric := v.AsNumeric()
	switch ft {
	case record.IntType:
		if numeric {
			return record.NewIntValue(int64(n)), nil
		}
	case record.FloatType:
		if numeric {
			return record.NewFloatValue(n), nil
		}
	case record.BoolType:
		if numeric {
			return record.NewBoolValue(n != 0), nil
		}
	}
	return record.Value{}, fmt.Errorf("cannot store %s into %s column: %w", v.Kind(), ft, record.ErrTypeMismatch)
}
