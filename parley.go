// Package parley holds the domain types of a streaming chat client: the
// conversation transcript, the events decoded from a response stream, the
// reducer that merges events into the transcript, and the interfaces the
// transport and auth collaborators implement.
//
// Subpackages are named after what they adapt: sse decodes the wire
// stream, backend speaks HTTP to the assistant service, chat drives one
// request/response lifecycle, and bubbletea renders transcripts.
package parley
