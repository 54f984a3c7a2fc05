package goext

// builtins are the Go predeclared functions that never denote an in-project
// callable; calls and references to them are dropped rather than emitted
// as unresolved edges.
var builtins = map[string]bool{
	"make": true, "len": true, "cap": true, "append": true, "copy": true,
	"delete": true, "close": true, "new": true, "panic": true, "recover": true,
	"print": true, "println": true, "complex": true, "real": true, "imag": true,
	"clear": true, "min": true, "max": true,
}
