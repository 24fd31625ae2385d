// Package domain defines the in-memory table shared by every layer of
// huntstats.
//
// A Table is an ordered list of named columns over rows of Value cells.
// A Value is Null, Int, Float, Bool or String; Null is distinct from zero
// and from the empty string. Column names for the monster and character
// datasets are declared as constants so callers never spell them twice.
package domain
