package item

import "fmt"

// AttributeKey ключ атрибута предмета
type AttributeKey string

const (
	AttrActionID    AttributeKey = "aid"
	AttrUniqueID    AttributeKey = "uid"
	AttrText        AttributeKey = "text"
	AttrDescription AttributeKey = "desc"
	AttrWrittenBy   AttributeKey = "writer"
	AttrCharges     AttributeKey = "charges"
	AttrDuration    AttributeKey = "duration"
	AttrDoorID      AttributeKey = "door"
	AttrTeleportTo  AttributeKey = "tele"
)

// AttributeKind тип значения атрибута
type AttributeKind uint8

const (
	KindInt AttributeKind = iota
	KindString
	KindBool
)

// AttributeValue значение атрибута с явным тегом типа
type AttributeValue struct {
	Kind AttributeKind `json:"k"`
	Int  int64         `json:"i,omitempty"`
	Str  string        `json:"s,omitempty"`
	Bool bool          `json:"b,omitempty"`
}

func IntValue(v int64) AttributeValue {
	return AttributeValue{Kind: KindInt, Int: v}
}

func StringValue(v string) AttributeValue {
	return AttributeValue{Kind: KindString, Str: v}
}

func BoolValue(v bool) AttributeValue {
	return AttributeValue{Kind: KindBool, Bool: v}
}

func (v AttributeValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}
