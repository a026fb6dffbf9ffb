package export

import (
	"strings"
	"time"

	"github.com/abhisek/mindcheck/internal/analysis"
)

// Item is one answered question.
type Item struct {
	Question string
	Answer   string
}

// Results is everything rendered into the exported document.
type Results struct {
	Topic       string
	Items       []Item
	Analysis    string
	Advice      string
	Stability   analysis.Stability
	GeneratedAt time.Time
}

// FileName returns the document name for topic, e.g.
// "Anxiety Check_Test_Results.pdf". Path separators and other characters
// that are unsafe in file names are replaced with "_".
func FileName(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "Untitled"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, topic)
	return safe + "_Test_Results.pdf"
}
