// Package llms provides the provider-neutral wire types exchanged with a
// function-calling Language Model: the tool descriptors advertised to the model,
// the tool calls emitted by the model, and the tool responses sent back.
//
// Provider specific shapes are produced by the packages under pkg/providers.
package llms
