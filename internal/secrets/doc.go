// Package secrets scrubs credentials out of user messages before they are
// stored in a conversation or sent to a generator.
//
// Detection uses the gitleaks default rule set. Matches are replaced with
// [REDACTED:rule-id] markers so the surrounding text still reads naturally.
// Content patterns that must never be redacted can be listed in a TOML
// allowlist file:
//
//	[allowlist]
//	regexes = ["example-[a-z]+"]
package secrets
