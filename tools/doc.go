// Package tools defines the Tool interface for LLM agents: a named function with a
// statically declared parameter schema and a natural-language description.
//
// Describe converts a tool into the function-calling descriptor advertised to the model.
// Tools report failures with the typed errors of this package; turning them into
// text for the model is left to the caller, see package toolbox.
package tools
