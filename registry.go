package humpack

import (
	"math"
	"reflect"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/felixludos/HumPack/utils"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// Field is one named member produced by a Serialize call or handed to a
// Deserialize call. Value is a primitive or a further object to pack.
type Field struct {
	Name  string
	Value any
}

type (
	// Alloc constructs an empty instance; it must not require any member
	// to exist yet (members arrive in the populate phase). The returned
	// value must be pointer-shaped so instances compare by identity.
	Alloc func() any
	// Serialize reports the packable state of an instance as named fields.
	Serialize func(obj any) ([]Field, error)
	// Deserialize populates an empty instance in place from fields whose
	// values are already reconstructed.
	Deserialize func(obj any, fields []Field) error
)

type Class struct {
	Name        string
	Alloc       Alloc
	Serialize   Serialize
	Deserialize Deserialize
}

// Registry maps stable type ids to their Class triple. It is safe for
// concurrent use: populate it at startup from any call site, read-mostly
// afterwards. Tests construct isolated instances instead of sharing one.
type Registry struct {
	classes *xsync.MapOf[string, Class]
	types   utils.CMap[reflect.Type, string]
}

func NewRegistry() *Registry {
	return &Registry{
		classes: xsync.NewMapOf[string, Class](),
	}
}

// Register binds a type id to its handler triple. Re-registering the exact
// same triple is a no-op, so repeated package init is harmless; a different
// triple under a taken id fails with ErrDuplicateType. The instance type is
// probed with one Alloc call so ClassOf can recognize it later.
func (reg *Registry) Register(cls Class) error {
	if cls.Name == "" || cls.Alloc == nil || cls.Serialize == nil || cls.Deserialize == nil {
		return errors.Wrapf(humpack_errors.ErrBadClass, "%q", cls.Name)
	}
	prev, loaded := reg.classes.LoadOrStore(cls.Name, cls)
	if loaded && !sameHandlers(prev, cls) {
		return errors.Wrapf(humpack_errors.ErrDuplicateType, "%q", cls.Name)
	}
	reg.types.Store(reflect.TypeOf(cls.Alloc()), cls.Name)
	return nil
}

func sameHandlers(a, b Class) bool {
	return fnptr(a.Alloc) == fnptr(b.Alloc) &&
		fnptr(a.Serialize) == fnptr(b.Serialize) &&
		fnptr(a.Deserialize) == fnptr(b.Deserialize)
}

func fnptr(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// Lookup resolves a type id, failing with ErrUnknownType for ids absent
// from the registry (the failure a forward-incompatible document hits).
func (reg *Registry) Lookup(name string) (Class, error) {
	cls, ok := reg.classes.Load(name)
	if !ok {
		return Class{}, errors.Wrapf(humpack_errors.ErrUnknownType, "%q", name)
	}
	return cls, nil
}

// ClassOf reports the registered type id for an instance, or
// ErrNotPackable when its runtime type is neither primitive nor registered.
func (reg *Registry) ClassOf(obj any) (string, error) {
	if _, ok := AsPrimitive(obj); ok {
		return "", errors.Wrap(humpack_errors.ErrNotPackable, "primitive values have no class")
	}
	name, ok := reg.types.Load(reflect.TypeOf(obj))
	if !ok {
		return "", errors.Wrapf(humpack_errors.ErrNotPackable, "unregistered type %T", obj)
	}
	return name, nil
}

// AsPrimitive normalizes a value to its packed primitive shape: nil, bool,
// int64, float64 or string. Non-finite floats are rejected later by the
// packer since the text form is JSON.
func AsPrimitive(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case bool, int64, float64, string:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, false
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return nil, false
		}
		return int64(x), true
	case float32:
		return float64(x), true
	}
	return nil, false
}
