// internal/assistant/catalog.go
package assistant

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCatalog = errors.New("CATALOG_INVALID")

// Response is either canned text or a producer evaluated at reply time.
type Response interface {
	Text() string
	isResponse()
}

type fixedResponse string

func (f fixedResponse) Text() string { return string(f) }
func (fixedResponse) isResponse()    {}

type computedResponse func() string

func (c computedResponse) Text() string { return c() }
func (computedResponse) isResponse()    {}

func Fixed(text string) Response {
	return fixedResponse(text)
}

func Computed(producer func() string) Response {
	return computedResponse(producer)
}

// IsComputed reports whether r is resolved at reply time.
func IsComputed(r Response) bool {
	_, ok := r.(computedResponse)
	return ok
}

type Intent struct {
	Name      string
	Patterns  []string
	Responses []Response
}

type compiledPattern struct {
	phrase string
	tokens []string
}

type catalogEntry struct {
	intent   Intent
	patterns []compiledPattern
}

// Catalog is an ordered, immutable set of intents. Iteration order is declaration order
// and decides ties in matching.
type Catalog struct {
	entries []catalogEntry
	index   map[string]int
}

// NewCatalog validates the intents and normalizes every pattern once with n.
func NewCatalog(n *Normalizer, intents ...Intent) (*Catalog, error) {
	c := &Catalog{
		entries: make([]catalogEntry, 0, len(intents)),
		index:   make(map[string]int, len(intents)),
	}

	for _, in := range intents {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: intent without a name", ErrInvalidCatalog)
		}
		if _, dup := c.index[in.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate intent %q", ErrInvalidCatalog, in.Name)
		}
		if len(in.Patterns) == 0 {
			return nil, fmt.Errorf("%w: intent %q has no patterns", ErrInvalidCatalog, in.Name)
		}
		if len(in.Responses) == 0 {
			return nil, fmt.Errorf("%w: intent %q has no responses", ErrInvalidCatalog, in.Name)
		}

		entry := catalogEntry{
			intent: Intent{
				Name:      in.Name,
				Patterns:  append([]string(nil), in.Patterns...),
				Responses: append([]Response(nil), in.Responses...),
			},
			patterns: make([]compiledPattern, 0, len(in.Patterns)),
		}
		for _, p := range in.Patterns {
			entry.patterns = append(entry.patterns, compiledPattern{
				phrase: p,
				tokens: n.Normalize(p),
			})
		}

		c.index[in.Name] = len(c.entries)
		c.entries = append(c.entries, entry)
	}

	return c, nil
}

// Intent returns a copy of the named intent.
func (c *Catalog) Intent(name string) (Intent, bool) {
	i, ok := c.index[name]
	if !ok {
		return Intent{}, false
	}
	in := c.entries[i].intent
	return Intent{
		Name:      in.Name,
		Patterns:  append([]string(nil), in.Patterns...),
		Responses: append([]Response(nil), in.Responses...),
	}, true
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.intent.Name)
	}
	return names
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) responses(name string) []Response {
	i, ok := c.index[name]
	if !ok {
		return nil
	}
	return c.entries[i].intent.Responses
}

// Clock returns the current local time.
type Clock func() time.Time

const (
	IntentGreeting     = "salutations"
	IntentFarewell     = "aurevoir"
	IntentTime         = "heure"
	IntentDate         = "date"
	IntentMood         = "humeur"
	IntentCapabilities = "capacites"
	IntentWeather      = "meteo"
)

// DefaultIntents returns the built-in French catalog. Time and date replies read clock on
// every call.
func DefaultIntents(clock Clock) []Intent {
	if clock == nil {
		clock = time.Now
	}

	return []Intent{
		{
			Name: IntentGreeting,
			Patterns: []string{
				"bonjour", "salut", "hello", "coucou", "hey", "bonsoir",
				"comment ça va", "comment vas-tu", "ça va",
			},
			Responses: []Response{
				Fixed("Bonjour! Je suis votre assistant virtuel. Comment puis-je vous aider?"),
				Fixed("Salut! Ravi de vous parler. Que puis-je faire pour vous?"),
				Fixed("Hey! Je suis là pour vous aider. Que souhaitez-vous faire?"),
			},
		},
		{
			Name: IntentFarewell,
			Patterns: []string{
				"au revoir", "bye", "à bientôt", "à plus", "adieu", "bonne journée",
			},
			Responses: []Response{
				Fixed("Au revoir! Passez une excellente journée!"),
				Fixed("À bientôt! N'hésitez pas à revenir si vous avez besoin d'aide."),
				Fixed("Au revoir et merci de votre visite!"),
			},
		},
		{
			Name:     IntentTime,
			Patterns: []string{"quelle heure", "l'heure", "heure actuelle", "temps"},
			Responses: []Response{
				Computed(func() string {
					return fmt.Sprintf("Il est actuellement %s.", clock().Format("15:04"))
				}),
			},
		},
		{
			Name:     IntentDate,
			Patterns: []string{"quel jour", "quelle date", "date aujourd'hui", "on est quel jour"},
			Responses: []Response{
				Computed(func() string {
					return fmt.Sprintf("Nous sommes le %s.", clock().Format("02/01/2006"))
				}),
			},
		},
		{
			Name:     IntentMood,
			Patterns: []string{"comment te sens tu", "ça va", "tu vas bien", "ton humeur"},
			Responses: []Response{
				Fixed("Je suis un programme, mais j'apprécie votre intérêt! Je suis là pour vous aider."),
				Fixed("Très bien, merci! Comment puis-je vous assister aujourd'hui?"),
				Fixed("En pleine forme et prêt à vous aider!"),
			},
		},
		{
			Name: IntentCapabilities,
			Patterns: []string{
				"que sais tu faire", "tes capacités", "peux tu faire",
				"tes fonctionnalités", "aide", "help",
			},
			Responses: []Response{
				Fixed("Je peux vous aider avec plusieurs choses :\n" +
					"- Vous donner l'heure et la date\n" +
					"- Vous donner la météo d'une ville\n" +
					"- Discuter un peu avec vous\n" +
					"N'hésitez pas à me poser vos questions."),
			},
		},
		{
			// Input containing the weather keyword is answered by the weather flow before
			// matching, so this entry never wins a match.
			Name:     IntentWeather,
			Patterns: []string{"météo", "prévisions météo"},
			Responses: []Response{
				Fixed(weatherClarification),
			},
		},
	}
}

func DefaultCatalog(n *Normalizer, clock Clock) (*Catalog, error) {
	return NewCatalog(n, DefaultIntents(clock)...)
}
