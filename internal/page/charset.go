package page

import (
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// minConfidence is the lowest detector confidence trusted over UTF-8
const minConfidence = 50

// fallbackEncoding is what DetermineEncoding answers when it found nothing
const fallbackEncoding = "windows-1252"

// decode converts data to UTF-8 and returns the charset it used: the
// declared one, else for HTML a BOM, meta declaration or valid UTF-8, else
// a detected one
func decode(data []byte, declared string, kind Kind) (string, string, error) {
	label := declared
	if label == "" && kind == KindHTML {
		if _, name, certain := charset.DetermineEncoding(data, "text/html"); certain || name != fallbackEncoding {
			label = name
		}
	}
	if label == "" {
		label = detect(data)
	}
	text, err := web.DecodeText(data, label)
	return text, label, err
}

func detect(data []byte) string {
	if len(data) == 0 {
		return "utf-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
