// Package intent classifies free-text utterances as commit-workflow
// triggers.
package intent

import (
	"strings"

	"github.com/sungit/sungit/internal/stringsutil"
)

// defaultTriggers is the documented contract, not an exhaustive list:
// configured extra phrases extend it.
var defaultTriggers = []string{
	"提交代码",
	"保存并推送",
	"保存代码",
	"上传代码",
	"提交",
	"推送",
	"commit code",
	"push code",
	"git commit",
	"git push",
	"commit changes",
	"push changes",
	"save and push",
	"commit and push",
}

// Detector matches utterances against a trigger phrase set.
type Detector struct {
	triggers []string
}

// NewDetector builds a detector over the default phrases plus any extras
// from configuration.
func NewDetector(extra ...string) *Detector {
	triggers := make([]string, 0, len(defaultTriggers)+len(extra))
	triggers = append(triggers, defaultTriggers...)
	for _, phrase := range extra {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			triggers = append(triggers, phrase)
		}
	}
	return &Detector{triggers: triggers}
}

// Match reports whether the utterance asks for the git workflow. Matching is
// case-insensitive substring containment, so "please commit code now"
// triggers just as "commit code" does.
func (d *Detector) Match(utterance string) bool {
	if strings.TrimSpace(utterance) == "" {
		return false
	}
	for _, trigger := range d.triggers {
		if stringsutil.ContainsFold(utterance, trigger) {
			return true
		}
	}
	return false
}

// DefaultTriggers returns a copy of the built-in phrase set.
func DefaultTriggers() []string {
	out := make([]string, len(defaultTriggers))
	copy(out, defaultTriggers)
	return out
}
