package completion

import (
	"regexp"
	"strings"
)

// fenceRE matches a markdown fence marker: three backticks, an optional
// language tag and the whitespace after it.
var fenceRE = regexp.MustCompile("```[\\w+#.-]*\\s*")

// Clean removes every markdown fence marker from s and trims surrounding
// whitespace. Text between fences is kept. Clean is idempotent.
func Clean(s string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(s, ""))
}
