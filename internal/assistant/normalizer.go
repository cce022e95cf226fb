// internal/assistant/normalizer.go
package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"voice-assistant/internal/common/logger"
)

const stemLanguage = "french"

// wordPattern matches maximal runs of letters, digits or underscore in any script.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// StemFunc reduces a lowercase token to its root.
type StemFunc func(token string) (string, error)

// Normalizer lowercases, tokenizes and stems text. The same instance must be used for
// catalog patterns and runtime input so both sides are scored on comparable ground.
type Normalizer struct {
	stem   StemFunc
	logger logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	return NewNormalizerWithStemmer(FrenchStemmer, log)
}

func NewNormalizerWithStemmer(stem StemFunc, log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Normalizer{stem: stem, logger: log}
}

// FrenchStemmer stems with the Snowball French algorithm, stop words included.
func FrenchStemmer(token string) (string, error) {
	return snowball.Stem(token, stemLanguage, true)
}

// Normalize never fails: on a stemming error it returns the lowercase input split on
// whitespace.
func (n *Normalizer) Normalize(text string) []string {
	lower := strings.ToLower(text)

	tokens, err := n.tokenize(lower)
	if err != nil {
		n.logger.Warn("normalization degraded to whitespace split", map[string]interface{}{
			"error": err.Error(),
		})
		return strings.Fields(lower)
	}
	return tokens
}

func (n *Normalizer) tokenize(lower string) (tokens []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("stemmer panic: %v", r)
		}
	}()

	words := wordPattern.FindAllString(lower, -1)
	tokens = make([]string, 0, len(words))
	for _, w := range words {
		if n.stem == nil {
			tokens = append(tokens, w)
			continue
		}
		stemmed, err := n.stem(w)
		if err != nil {
			return nil, fmt.Errorf("stem %q: %w", w, err)
		}
		tokens = append(tokens, stemmed)
	}
	return tokens, nil
}
