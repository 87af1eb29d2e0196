package domain

import "fmt"

// FieldCode identifies a serialized transaction field as type<<16 | field.
type FieldCode int32

const (
	fieldTypeBlob    = 7
	fieldTypeAccount = 8
)

const (
	FieldMemoType    FieldCode = fieldTypeBlob<<16 | 12
	FieldMemoData    FieldCode = fieldTypeBlob<<16 | 13
	FieldMemoFormat  FieldCode = fieldTypeBlob<<16 | 14
	FieldAccount     FieldCode = fieldTypeAccount<<16 | 1
	FieldDestination FieldCode = fieldTypeAccount<<16 | 3
)

func (f FieldCode) String() string {
	switch f {
	case FieldMemoType:
		return "MemoType"
	case FieldMemoData:
		return "MemoData"
	case FieldMemoFormat:
		return "MemoFormat"
	case FieldAccount:
		return "Account"
	case FieldDestination:
		return "Destination"
	default:
		return fmt.Sprintf("field(%d)", int32(f))
	}
}
