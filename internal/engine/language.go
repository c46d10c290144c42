package engine

import (
	"path/filepath"
	"strings"
)

// PlainText is the language id of files with no known extension.
const PlainText = "plaintext"

var languageByExt = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".js":    "javascript",
	".mjs":   "javascript",
	".jsx":   "javascriptreact",
	".py":    "python",
	".rb":    "ruby",
	".java":  "java",
	".c":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".cs":    "csharp",
	".swift": "swift",
	".kt":    "kotlin",
	".kts":   "kotlin",
	".scala": "scala",
	".php":   "php",
	".lua":   "lua",
	".sh":    "shellscript",
	".bash":  "shellscript",
	".zsh":   "shellscript",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".scss":  "scss",
	".md":    "markdown",
	".sql":   "sql",
	".proto": "protobuf",
	".zig":   "zig",
	".ex":    "elixir",
	".exs":   "elixir",
	".erl":   "erlang",
	".hs":    "haskell",
	".ml":    "ocaml",
	".clj":   "clojure",
	".dart":  "dart",
	".r":     "r",
	".vue":   "vue",
}

var languageByName = map[string]string{
	"dockerfile":     "dockerfile",
	"makefile":       "makefile",
	"gnumakefile":    "makefile",
	"cmakelists.txt": "cmake",
	"go.mod":         "go.mod",
}

// DetectLanguageID maps a file path to the language name sent to the
// completion service as the language hint.
func DetectLanguageID(path string) string {
	if path == "" {
		return PlainText
	}
	base := strings.ToLower(filepath.Base(path))
	if id, ok := languageByName[base]; ok {
		return id
	}
	if id, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}
	return PlainText
}
