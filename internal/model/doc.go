// Package model holds the immutable WDM data model of spec §3: parameter,
// class, feature, enum, and method definitions, plus the pure multi-
// inheritance resolution function that turns a class's Includes chain into
// its resolved_includes and resolved_parameter_definitions.
//
// Definitions are shared, immutable value objects once the model has
// loaded; a per-instance override produces a cloned definition that shares
// its unaffected fields by value (Go structs are small enough here that a
// plain copy is the "lightweight clone" the design notes call for).
package model
