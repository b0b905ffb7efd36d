// Package presence holds who is connected: the nickname registry and the
// room membership set. Neither type does any I/O; the chat package drives
// them and turns their state changes into events.
package presence
