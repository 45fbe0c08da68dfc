package models

import (
	"fmt"
	"strings"
)

// Tag is the closed set of report categories.
type Tag string

const (
	TagGarbage     Tag = "Garbage"
	TagRoad        Tag = "Road"
	TagElectricity Tag = "Electricity"
	TagWater       Tag = "Water"
	TagSanitation  Tag = "Sanitation"
)

// AllTags lists the categories in display order.
var AllTags = []Tag{TagGarbage, TagRoad, TagElectricity, TagWater, TagSanitation}

// ParseTag converts any casing ("road", "ROAD") to the canonical tag.
func ParseTag(raw string) (Tag, error) {
	needle := strings.TrimSpace(raw)
	for _, t := range AllTags {
		if strings.EqualFold(needle, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", raw)
}

// Valid reports whether t is one of the canonical tags.
func (t Tag) Valid() bool {
	for _, candidate := range AllTags {
		if t == candidate {
			return true
		}
	}
	return false
}

func (t Tag) String() string { return string(t) }
