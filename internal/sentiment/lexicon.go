// internal/sentiment/lexicon.go
package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// negationWindow is how many following tokens a negator applies to.
const negationWindow = 3

// DefaultPolarities holds French and English word polarities in [-1, 1]. Inflected forms are
// listed explicitly; the lexicon does not stem.
var DefaultPolarities = map[string]float64{
	// French, positive
	"bien": 0.5, "bon": 0.5, "bonne": 0.5, "super": 0.8, "génial": 0.9, "géniale": 0.9,
	"excellent": 0.9, "excellente": 0.9, "heureux": 0.8, "heureuse": 0.8, "content": 0.6,
	"contente": 0.6, "ravi": 0.8, "ravie": 0.8, "adore": 0.9, "aime": 0.6, "merci": 0.4,
	"parfait": 0.9, "parfaite": 0.9, "magnifique": 0.9, "formidable": 0.9, "joie": 0.8,
	"cool": 0.5, "sympa": 0.5, "agréable": 0.6, "top": 0.7,
	// French, negative
	"mal": -0.5, "mauvais": -0.6, "mauvaise": -0.6, "triste": -0.7, "déteste": -0.9,
	"horrible": -0.9, "nul": -0.7, "nulle": -0.7, "terrible": -0.8, "fatigué": -0.4,
	"fatiguée": -0.4, "énervé": -0.7, "énervée": -0.7, "colère": -0.8, "peur": -0.6,
	"déprimé": -0.8, "déprimée": -0.8, "ennuie": -0.4, "marre": -0.7, "seul": -0.4,
	"seule": -0.4, "stressé": -0.6, "stressée": -0.6, "pire": -0.8,
	// English
	"good": 0.6, "great": 0.8, "happy": 0.8, "love": 0.8, "nice": 0.6, "awesome": 0.9,
	"thanks": 0.4, "bad": -0.6, "sad": -0.7, "hate": -0.9, "awful": -0.9, "angry": -0.8,
}

var defaultNegators = map[string]bool{
	"pas": true, "jamais": true, "aucun": true, "aucune": true,
	"not": true, "never": true, "no": true,
}

var defaultIntensifiers = map[string]float64{
	"très": 1.5, "vraiment": 1.3, "trop": 1.3, "tellement": 1.5, "extrêmement": 1.8,
	"assez": 0.8, "peu": 0.5,
	"very": 1.5, "really": 1.3, "so": 1.3,
}

// LexiconScorer scores polarity from a word list: negators flip the next scored word,
// intensifiers scale it, and the result is the mean over scored words.
type LexiconScorer struct {
	polarities   map[string]float64
	negators     map[string]bool
	intensifiers map[string]float64
}

// NewLexiconScorer starts from DefaultPolarities; extra entries override or extend it.
func NewLexiconScorer(extra map[string]float64) *LexiconScorer {
	polarities := make(map[string]float64, len(DefaultPolarities)+len(extra))
	for w, p := range DefaultPolarities {
		polarities[w] = p
	}
	for w, p := range extra {
		polarities[strings.ToLower(w)] = p
	}
	return &LexiconScorer{
		polarities:   polarities,
		negators:     defaultNegators,
		intensifiers: defaultIntensifiers,
	}
}

func (s *LexiconScorer) ScorePolarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		sum        float64
		hits       int
		negateLeft int
		scale      = 1.0
	)

	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if s.negators[tok] {
			negateLeft = negationWindow
			continue
		}
		if f, ok := s.intensifiers[tok]; ok {
			scale *= f
			continue
		}

		p, ok := s.polarities[tok]
		if !ok {
			if negateLeft > 0 {
				negateLeft--
			}
			scale = 1
			continue
		}

		v := p * scale
		if negateLeft > 0 {
			v = -v
		}
		sum += v
		hits++
		negateLeft = 0
		scale = 1
	}

	if hits == 0 {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, sum/float64(hits))), nil
}
