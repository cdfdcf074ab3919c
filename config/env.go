package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// ErrEnvInvalidStructure indicates that the target is not a pointer to a struct
var ErrEnvInvalidStructure = errors.New("env: invalid structure")

// EnvFeeder fills struct fields tagged with `env:"NAME"` from PREFIX_NAME
// environment variables. Nested structs are walked with the same prefix.
type EnvFeeder struct {
	Prefix string
}

// NewEnvFeeder creates an EnvFeeder for prefix.
func NewEnvFeeder(prefix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix}
}

// Feed populates structure, which must be a pointer to a struct. Unset and
// empty variables leave fields untouched.
func (f EnvFeeder) Feed(structure any) error {
	rv := reflect.ValueOf(structure)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrEnvInvalidStructure
	}
	return f.fillStruct(rv.Elem())
}

func (f EnvFeeder) fillStruct(rv reflect.Value) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)
		if !fieldType.IsExported() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := f.fillStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag, ok := fieldType.Tag.Lookup("env")
		if !ok {
			continue
		}
		if err := f.setField(field, envTag); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (f EnvFeeder) envName(tag string) string {
	name := strings.ToUpper(tag)
	if f.Prefix != "" {
		name = strings.ToUpper(f.Prefix) + "_" + name
	}
	return name
}

func (f EnvFeeder) setField(field reflect.Value, tag string) error {
	value := os.Getenv(f.envName(tag))
	if value == "" {
		return nil
	}

	converted, err := cast.FromType(value, field.Type())
	if err != nil {
		return fmt.Errorf("cannot convert %s to type %v: %w", f.envName(tag), field.Type(), err)
	}
	field.Set(reflect.ValueOf(converted).Convert(field.Type()))
	return nil
}
