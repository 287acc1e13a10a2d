// Package schematest holds introspection fixtures shared by package tests.
package schematest

import _ "embed"

// StarWars is the introspection result of a small Star Wars API. It has
// all three root types, a self-referencing Human.friends, an interface,
// a union, enums and an input object.
//
//go:embed starwars.json
var StarWars []byte
