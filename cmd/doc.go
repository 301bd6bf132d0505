// Package cmd implements the calassist command line interface.
//
// The root command defaults to the interactive chat. The serve command
// runs the HTTP chat API, and the mcp command exposes the calendar tools
// to external AI assistants over stdio.
package cmd
