package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/parsers"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

// RenderClassifierSystem fills the classifier system prompt for the given
// capability catalog. Only known tokens are replaced so literal braces in
// the template survive.
func RenderClassifierSystem(capabilities []model.Capability) string {
	var b strings.Builder
	for _, c := range capabilities {
		fmt.Fprintf(&b, "- %s (command %q): %s\n", c.Intent, c.Command, c.Description)
	}

	return strings.NewReplacer(
		"{TD}", parsers.TupleDelimiter,
		"{RD}", parsers.RecordDelimiter,
		"{CD}", parsers.CompletionDelimiter,
		"{capabilities}", strings.TrimRight(b.String(), "\n"),
	).Replace(classifierSystemPrompt)
}
