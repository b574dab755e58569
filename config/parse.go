package config

import (
	"fmt"
	"reflect"

	"github.com/go-ini/ini"
)

var (
	sectionType = reflect.TypeOf((*ini.Section)(nil))
	keyType     = reflect.TypeOf((*ini.Key)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// MapToStruct fills the struct pointed to by v from section s.
//
// Each field to fill carries an `ini:"key"` tag. A missing key leaves the
// field alone unless useDefaults is set and the field has a
// `default:"value"` tag. String slices are split on the `delim` tag. A
// `parse:"Method"` tag hands the conversion to a method of v with the
// signature func(*ini.Section, *ini.Key) (T, error).
func MapToStruct(s *ini.Section, v any, useDefaults bool) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Struct {
		panic("MapToStruct requires a pointer to a struct")
	}
	val := ptr.Elem()
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Tag.Get("ini")
		if name == "" || name == "-" {
			continue
		}
		key, err := s.GetKey(name)
		if err != nil {
			def, ok := field.Tag.Lookup("default")
			if !useDefaults || !ok {
				continue
			}
			key, _ = s.NewKey(name, def)
		}
		value, err := convert(s, key, ptr, field)
		if err != nil {
			return fmt.Errorf("[%s].%s: %w", s.Name(), name, err)
		}
		val.Field(i).Set(value)
	}
	return nil
}

func convert(
	s *ini.Section, key *ini.Key, ptr reflect.Value, field reflect.StructField,
) (reflect.Value, error) {
	if methodName, ok := field.Tag.Lookup("parse"); ok {
		return callParser(s, key, ptr, methodName, field.Type)
	}
	var value any
	var err error
	switch field.Type.Kind() {
	case reflect.String:
		value = key.String()
	case reflect.Bool:
		value, err = key.Bool()
	case reflect.Int:
		value, err = key.Int()
	case reflect.Slice:
		if field.Type.Elem().Kind() != reflect.String {
			panic(fmt.Sprintf("%s: unsupported field type %s", field.Name, field.Type))
		}
		value = key.Strings(field.Tag.Get("delim"))
	default:
		panic(fmt.Sprintf("%s: unsupported field type %s", field.Name, field.Type))
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(value).Convert(field.Type), nil
}

func callParser(
	s *ini.Section, key *ini.Key, ptr reflect.Value, name string, want reflect.Type,
) (reflect.Value, error) {
	method := ptr.MethodByName(name)
	if !method.IsValid() {
		panic(fmt.Sprintf("(%s).%s: method not found", ptr.Type(), name))
	}
	mt := method.Type()
	if mt.NumIn() != 2 || mt.In(0) != sectionType || mt.In(1) != keyType ||
		mt.NumOut() != 2 || !mt.Out(0).AssignableTo(want) || mt.Out(1) != errorType {
		panic(fmt.Sprintf("(%s).%s: expected func(*ini.Section, *ini.Key) (%s, error)",
			ptr.Type(), name, want))
	}
	out := method.Call([]reflect.Value{reflect.ValueOf(s), reflect.ValueOf(key)})
	if err, _ := out[1].Interface().(error); err != nil {
		return reflect.Value{}, err
	}
	return out[0], nil
}
