// internal/assistant/weather.go
package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWeatherKeyword = "météo"

const weatherClarification = "Pour quelle ville souhaitez-vous connaître la météo ?"

type WeatherRecord struct {
	City        string `json:"city" mapstructure:"city"`
	Temperature string `json:"temperature" mapstructure:"temperature"`
	Condition   string `json:"condition" mapstructure:"condition"`
}

// DefaultKnownCities is scanned in order; the first city found in the input wins.
var DefaultKnownCities = []string{
	"Paris", "Lyon", "Marseille", "Toulouse", "Nice",
	"Nantes", "Strasbourg", "Montpellier", "Bordeaux", "Lille",
}

func DefaultWeatherTable() []WeatherRecord {
	return []WeatherRecord{
		{City: "Paris", Temperature: "22°C", Condition: "ensoleillé"},
		{City: "Lyon", Temperature: "18°C", Condition: "nuageux"},
		{City: "Marseille", Temperature: "25°C", Condition: "ensoleillé"},
		{City: "Toulouse", Temperature: "21°C", Condition: "partiellement nuageux"},
		{City: "Nice", Temperature: "24°C", Condition: "ensoleillé"},
		{City: "Bordeaux", Temperature: "19°C", Condition: "pluvieux"},
		{City: "Lille", Temperature: "15°C", Condition: "pluvieux"},
	}
}

func DefaultWeatherRecord() WeatherRecord {
	return WeatherRecord{Temperature: "20°C", Condition: "indisponible"}
}

// WeatherService holds the keyword, the known cities and the static weather table. It is
// read-only after construction.
type WeatherService struct {
	keyword  string
	cities   []string
	table    map[string]WeatherRecord
	fallback WeatherRecord
}

func NewWeatherService(keyword string, cities []string, table []WeatherRecord, fallback WeatherRecord) *WeatherService {
	if keyword == "" {
		keyword = DefaultWeatherKeyword
	}

	s := &WeatherService{
		keyword:  strings.ToLower(keyword),
		cities:   append([]string(nil), cities...),
		table:    make(map[string]WeatherRecord, len(table)),
		fallback: fallback,
	}
	for _, rec := range table {
		key := CanonicalCity(rec.City)
		rec.City = key
		s.table[key] = rec
	}
	return s
}

func NewDefaultWeatherService() *WeatherService {
	return NewWeatherService(DefaultWeatherKeyword, DefaultKnownCities, DefaultWeatherTable(), DefaultWeatherRecord())
}

// CanonicalCity title-cases a city name using French casing rules.
func CanonicalCity(city string) string {
	return cases.Title(language.French).String(strings.ToLower(strings.TrimSpace(city)))
}

// Triggered reports whether the lowercase raw input contains the weather keyword.
func (s *WeatherService) Triggered(raw string) bool {
	return strings.Contains(strings.ToLower(raw), s.keyword)
}

// ExtractCity returns the first known city contained in raw, case-insensitively.
func (s *WeatherService) ExtractCity(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, city := range s.cities {
		if city == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(city)) {
			return city, true
		}
	}
	return "", false
}

// Lookup never misses: unknown cities get the default record.
func (s *WeatherService) Lookup(city string) WeatherRecord {
	key := CanonicalCity(city)
	if rec, ok := s.table[key]; ok {
		return rec
	}
	rec := s.fallback
	rec.City = key
	return rec
}

func (s *WeatherService) HandleWeather(raw string) string {
	reply, _ := s.handle(raw)
	return reply
}

func (s *WeatherService) handle(raw string) (string, string) {
	city, ok := s.ExtractCity(raw)
	if !ok {
		return weatherClarification, ""
	}

	rec := s.Lookup(city)
	return FormatWeather(rec), rec.City
}

func FormatWeather(rec WeatherRecord) string {
	return fmt.Sprintf("Météo à %s : %s, %s.", rec.City, rec.Temperature, rec.Condition)
}
