package pyext

// builtins lists Python builtin callables that call resolution never
// treats as project-local targets, mirroring the original helper's
// BUILTIN_FUNCTIONS set.
var builtins = map[string]bool{
	"print": true, "len": true, "range": true, "str": true, "int": true,
	"float": true, "bool": true, "list": true, "dict": true, "set": true,
	"tuple": true, "type": true, "isinstance": true, "issubclass": true,
	"hasattr": true, "getattr": true, "setattr": true, "delattr": true,
	"id": true, "hash": true, "repr": true, "sorted": true, "reversed": true,
	"enumerate": true, "zip": true, "map": true, "filter": true, "any": true,
	"all": true, "min": true, "max": true, "sum": true, "abs": true,
	"round": true, "input": true, "open": true, "super": true,
	"property": true, "staticmethod": true, "classmethod": true,
	"ValueError": true, "TypeError": true, "KeyError": true,
	"IndexError": true, "RuntimeError": true, "Exception": true,
	"NotImplementedError": true, "AttributeError": true, "OSError": true,
	"IOError": true, "StopIteration": true, "next": true, "iter": true,
	"callable": true, "vars": true, "dir": true, "globals": true,
	"locals": true, "exec": true, "eval": true, "compile": true,
	"format": true, "chr": true, "ord": true, "hex": true, "oct": true,
	"bin": true, "pow": true, "divmod": true, "complex": true,
	"bytes": true, "bytearray": true, "memoryview": true, "frozenset": true,
	"object": true, "breakpoint": true,
}

// autoEntryDecoratorHints marks a decorated function as an entry point when
// its decorator name contains any of these substrings — the original
// helper's web-framework/CLI heuristic.
var autoEntryDecoratorHints = []string{"route", "get", "post", "put", "delete", "command", "task"}
