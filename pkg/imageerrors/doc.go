// Package imageerrors classifies failures of the fetch pipeline.
//
// Every error that reaches a completion callback carries one of the codes
// declared here. Cancellation is not an error and has no code.
package imageerrors
