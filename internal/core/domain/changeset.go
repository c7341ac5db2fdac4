package domain

import (
	"fmt"
	"reflect"
	"time"
)

const auditTimeFormat = "2006-01-02 15:04:05"

// EntityRef is the serialized form of a reference to another business
// entity: just the id and type, never the nested object.
type EntityRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// SerializeAuditValue renders a field value for the audit trail. The
// result is deterministic and display-friendly: times become a fixed
// format, entity references a small {id, type} tuple, collections are
// serialized element-wise, plain scalars pass through, and anything
// unrecognized degrades to its type name rather than failing the write.
func SerializeAuditValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v.UTC().Format(auditTimeFormat)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(auditTimeFormat)
	case EntityRef:
		return v
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case []byte:
		return string(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = SerializeAuditValue(elem)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = elem
		}
		return out
	default:
		return fmt.Sprintf("%T", value)
	}
}

// CreateChanges builds the change-set for a newly inserted entity:
// every non-nil field as {before: nil, after: value}. Absent values are
// omitted, there is nothing to audit about them.
func CreateChanges(values map[string]any) map[string]FieldChange {
	changes := make(map[string]FieldChange, len(values))
	for field, value := range values {
		serialized := SerializeAuditValue(value)
		if serialized == nil {
			continue
		}
		changes[field] = FieldChange{Before: nil, After: serialized}
	}
	return changes
}

// UpdateChanges diffs two explicit value maps field by field. Unchanged
// fields are omitted; an empty result means the write was a no-op and
// must not produce an audit entry.
func UpdateChanges(before, after map[string]any) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for field, newValue := range after {
		oldSerialized := SerializeAuditValue(before[field])
		newSerialized := SerializeAuditValue(newValue)
		if reflect.DeepEqual(oldSerialized, newSerialized) {
			continue
		}
		changes[field] = FieldChange{Before: oldSerialized, After: newSerialized}
	}
	for field, oldValue := range before {
		if _, ok := after[field]; ok {
			continue
		}
		oldSerialized := SerializeAuditValue(oldValue)
		if oldSerialized == nil {
			continue
		}
		changes[field] = FieldChange{Before: oldSerialized, After: nil}
	}
	return changes
}

// DeleteChanges captures an entity's last known values on removal:
// every non-nil field as {before: value, after: nil}.
func DeleteChanges(values map[string]any) map[string]FieldChange {
	changes := make(map[string]FieldChange, len(values))
	for field, value := range values {
		serialized := SerializeAuditValue(value)
		if serialized == nil {
			continue
		}
		changes[field] = FieldChange{Before: serialized, After: nil}
	}
	return changes
}
