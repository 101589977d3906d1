package core

import "errors"

// ErrAdapterContract reports a model adapter that broke the completion
// contract, for example by returning a response carrying neither text nor
// tool calls. These are programming errors in the adapter, not recoverable
// run conditions, so they terminate the run.
var ErrAdapterContract = errors.New("model adapter violated the completion contract")
