package sfs

import "reflect"

// Type tags a geometry with its place in the Simple Features hierarchy.
type Type int

const (
	TypeGeometry Type = iota
	TypePoint
	TypeCurve
	TypeLineString
	TypeLine
	TypeLinearRing
	TypeSurface
	TypePolygon
	TypeGeometryCollection
	TypeMultiPoint
	TypeMultiCurve
	TypeMultiLineString
	TypeMultiSurface
	TypeMultiPolygon
)

var typeNames = [...]string{
	TypeGeometry:           "Geometry",
	TypePoint:              "Point",
	TypeCurve:              "Curve",
	TypeLineString:         "LineString",
	TypeLine:               "Line",
	TypeLinearRing:         "LinearRing",
	TypeSurface:            "Surface",
	TypePolygon:            "Polygon",
	TypeGeometryCollection: "GeometryCollection",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiCurve:         "MultiCurve",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiSurface:       "MultiSurface",
	TypeMultiPolygon:       "MultiPolygon",
}

var typeParents = [...]Type{
	TypeGeometry:           TypeGeometry,
	TypePoint:              TypeGeometry,
	TypeCurve:              TypeGeometry,
	TypeLineString:         TypeCurve,
	TypeLine:               TypeLineString,
	TypeLinearRing:         TypeLineString,
	TypeSurface:            TypeGeometry,
	TypePolygon:            TypeSurface,
	TypeGeometryCollection: TypeGeometry,
	TypeMultiPoint:         TypeGeometryCollection,
	TypeMultiCurve:         TypeGeometryCollection,
	TypeMultiLineString:    TypeMultiCurve,
	TypeMultiSurface:       TypeGeometryCollection,
	TypeMultiPolygon:       TypeMultiSurface,
}

func (t Type) valid() bool { return t >= TypeGeometry && t <= TypeMultiPolygon }

// String returns the Simple Features name of the type.
func (t Type) String() string {
	if !t.valid() {
		return "Unknown"
	}
	return typeNames[t]
}

// Parent returns the supertype of t. The root, TypeGeometry, is its own parent.
func (t Type) Parent() Type {
	if !t.valid() {
		return TypeGeometry
	}
	return typeParents[t]
}

// IsA reports whether t is super or a descendant of super.
func (t Type) IsA(super Type) bool {
	if !t.valid() || !super.valid() {
		return false
	}
	for {
		if t == super {
			return true
		}
		if t == TypeGeometry {
			return false
		}
		t = t.Parent()
	}
}

// Instantiable reports whether geometries of this exact type can exist.
// Curve, Surface, MultiCurve, MultiSurface and Geometry are abstract.
func (t Type) Instantiable() bool {
	switch t {
	case TypeGeometry, TypeCurve, TypeSurface, TypeMultiCurve, TypeMultiSurface:
		return false
	}
	return t.valid()
}

// Check reports whether v provides the full capability set of t: it must
// implement the matching interface and report t, or a subtype of t, as its
// geometry type. Check never panics; it returns false for nil and for
// values that are not geometries.
func (t Type) Check(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	g, ok := v.(Geometry)
	if !ok || isNilGeometry(g) {
		return false
	}
	if !implements(t, g) {
		return false
	}
	return g.GeometryType().IsA(t)
}

// Is reports whether v is a geometry of type t. It is the same predicate
// as t.Check(v), in argument order convenient for switch statements:
//
//	switch {
//	case sfs.Is(g, sfs.TypeLinearRing):
//	case sfs.Is(g, sfs.TypeLineString):
//	}
func Is(v any, t Type) bool { return t.Check(v) }

func implements(t Type, g Geometry) bool {
	var ok bool
	switch t {
	case TypeGeometry:
		ok = true
	case TypePoint:
		_, ok = g.(Point)
	case TypeCurve:
		_, ok = g.(Curve)
	case TypeLineString:
		_, ok = g.(LineString)
	case TypeLine:
		_, ok = g.(Line)
	case TypeLinearRing:
		_, ok = g.(LinearRing)
	case TypeSurface:
		_, ok = g.(Surface)
	case TypePolygon:
		_, ok = g.(Polygon)
	case TypeGeometryCollection:
		_, ok = g.(GeometryCollection)
	case TypeMultiPoint:
		_, ok = g.(MultiPoint)
	case TypeMultiCurve:
		_, ok = g.(MultiCurve)
	case TypeMultiLineString:
		_, ok = g.(MultiLineString)
	case TypeMultiSurface:
		_, ok = g.(MultiSurface)
	case TypeMultiPolygon:
		_, ok = g.(MultiPolygon)
	}
	return ok
}

// isNilGeometry catches typed nil pointers stored in a Geometry interface.
func isNilGeometry(g Geometry) bool {
	if g == nil {
		return true
	}
	v := reflect.ValueOf(g)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
