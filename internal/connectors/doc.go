// Package connectors provides implementations of the TranscriptSource
// interface. Each connector knows how to enumerate and read raw transcript
// documents from one kind of location; filesystem is the only one today.
package connectors
