// Package completion requests code from a remote language model and
// cleans the reply for insertion.
//
// A Requester sends the prompt to the primary model under a short
// deadline. If, and only if, that attempt times out it retries once
// against the fallback model with a longer deadline. Every other failure
// is returned unchanged.
//
// Replies are passed through Clean, which strips markdown code fences.
package completion
