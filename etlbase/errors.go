package etlbase

import "github.com/cockroachdb/errors"

// The closed set of failure kinds surfaced by collaborators. Errors are
// tagged with errors.Mark so kinds survive wrapping across package
// boundaries.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrConnectivity        = errors.New("connectivity error")
	ErrNotFound            = errors.New("not found")
	ErrSchemaIntrospection = errors.New("schema introspection error")
	ErrDataLoad            = errors.New("data load error")
	ErrComparison          = errors.New("comparison error")
)

func MarkConfiguration(err error) error {
	return mark(err, ErrConfiguration)
}

func MarkConnectivity(err error) error {
	return mark(err, ErrConnectivity)
}

func MarkNotFound(err error) error {
	return mark(err, ErrNotFound)
}

func MarkSchemaIntrospection(err error) error {
	return mark(err, ErrSchemaIntrospection)
}

func MarkDataLoad(err error) error {
	return mark(err, ErrDataLoad)
}

func MarkComparison(err error) error {
	return mark(err, ErrComparison)
}

func mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSchemaIntrospection(err error) bool {
	return errors.Is(err, ErrSchemaIntrospection)
}

func IsDataLoad(err error) bool {
	return errors.Is(err, ErrDataLoad)
}

func IsComparison(err error) bool {
	return errors.Is(err, ErrComparison)
}
