// Package extraction turns free-form generated text into validated
// artifacts.
//
// Generated text is rarely bare JSON. Extraction first isolates the most
// likely JSON payload:
//
//  1. the interior of the first block fenced with a json tag
//  2. otherwise the interior of the first fenced block of any tag
//  3. otherwise the span from the first "{" to the last "}"
//  4. otherwise the whole text
//
// The payload is then decoded, list fields are normalized and the result is
// validated. Any failure yields the artifact's placeholder variant with
// Degraded set; extraction never returns an error to its caller.
package extraction
