package categorize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Group is a named set of description patterns mapped to a suggested
// category. CategoryKeywords link the group to an existing category whose
// name contains one of them (case-insensitive); the link is a suggestion
// only, never applied automatically.
type Group struct {
	Label            string   `yaml:"label" json:"label"`
	Patterns         []string `yaml:"patterns" json:"patterns"`
	CategoryKeywords []string `yaml:"category_keywords" json:"category_keywords,omitempty"`
}

// DefaultGroups returns the built-in pattern table for Dutch bank statements:
// supermarket chains, fuel stations, dining and parking operators.
func DefaultGroups() []Group {
	return []Group{
		{
			Label: "Boodschappen",
			Patterns: []string{
				"DEKAMARKT", "ALBERT HEIJN", "JUMBO", "LIDL", "ALDI", "PLUS", "COOP",
				"SPAR", "VOMAR", "DIRK", "PICNIC", "BONI",
			},
			CategoryKeywords: []string{"boodschap", "supermarkt"},
		},
		{
			Label: "Auto/Transport",
			Patterns: []string{
				"SHELL", "BP", "ESSO", "TEXACO", "TOTAL", "TANGO", "GULF", "Q8",
				"TINQ", "FASTNED", "ALLEGO",
			},
			CategoryKeywords: []string{"auto", "benzine", "transport"},
		},
		{
			Label: "Restaurants/Eten",
			Patterns: []string{
				"MCDONALDS", "BURGER KING", "KFC", "SUBWAY", "DOMINOS", "NEW YORK PIZZA",
				"CAFE", "RESTAURANT", "BISTRO", "BRASSERIE",
			},
			CategoryKeywords: []string{"restaurant", "eten", "horeca"},
		},
		{
			Label: "Parkeren",
			Patterns: []string{
				"PARKEREN", "Q-PARK", "APCOA", "EUROPARKING", "P+R",
			},
			CategoryKeywords: []string{"parkeren"},
		},
	}
}

// LoadGroups reads a pattern-group table from a YAML file. The file holds a
// top-level "groups" list; see DefaultGroups for the built-in equivalent.
func LoadGroups(path string) ([]Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read groups file: %w", err)
	}

	var doc struct {
		Groups []Group `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse groups file: %w", err)
	}

	for i, g := range doc.Groups {
		if g.Label == "" {
			return nil, fmt.Errorf("group %d: missing label", i+1)
		}
		if len(g.Patterns) == 0 {
			return nil, fmt.Errorf("group %q: no patterns", g.Label)
		}
	}
	return doc.Groups, nil
}
