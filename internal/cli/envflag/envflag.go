// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package envflag provides a wrapper around the standard flag package, allowing
// flags to be overridden by environment variables.
package envflag

import (
	"flag"
	"fmt"
	"strconv"
)

// Type is a constraint that permits only types supported by envflag package.
type Type interface {
	int | bool | string
}

// Value sets up a flag with the given name, default value, and usage
// information.
//
// If the environment variable specified by envName is set, it overrides the
// flag's default value. An explicitly passed flag still wins over the
// environment variable.
func Value[T Type](
	name, envName string, value T, usage string,
	fs *flag.FlagSet, getenv func(string) string,
) *T {
	result := value

	if envValue := getenv(envName); envValue != "" {
		switch any(value).(type) {
		case int:
			if parsed, err := strconv.Atoi(envValue); err == nil {
				result = any(parsed).(T)
			}
		case bool:
			if parsed, err := strconv.ParseBool(envValue); err == nil {
				result = any(parsed).(T)
			}
		case string:
			result = any(envValue).(T)
		}
	}

	usage += " Can be overridden by " + envName + " environment variable."

	fs.Var(newFlagValue(result, &result), name, usage)
	return &result
}

type flagValue[T Type] struct {
	value *T
}

func newFlagValue[T Type](defaultValue T, value *T) *flagValue[T] {
	*value = defaultValue
	return &flagValue[T]{value: value}
}

func (f *flagValue[T]) String() string {
	if f.value == nil {
		return ""
	}
	return fmt.Sprintf("%v", *f.value)
}

func (f *flagValue[T]) Set(s string) error {
	switch v := any(f.value).(type) {
	case *int:
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*v = parsed
	case *bool:
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*v = parsed
	case *string:
		*v = s
	}
	return nil
}
