// Package conversation holds the ordered turn log each phase agent keeps
// with the user.
//
// A Conversation is append-only for the life of a phase. It is discarded
// only when the owning agent is reset, and each phase gets its own instance.
// Turns can be rendered as plain text, markdown or JSON lines for export.
package conversation
