package models

import "fmt"

// ColumnType is the declared output type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDecimal
	TypeTimestamp
	TypeDate
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeDecimal:
		return "decimal"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Column declares one output column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}
