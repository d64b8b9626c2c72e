package location

import "strings"

// BuildSearchQuery turns a descriptor into a free-text query for the
// upstream providers. Highest priority wins: an explicit hint, then the
// parsed business or landmark name with any region context, then the joined
// address components, then the raw phrase.
func BuildSearchQuery(d *Descriptor) string {
	if hint := strings.TrimSpace(d.SearchQueryHint); hint != "" {
		return hint
	}

	c := d.Components
	if c != nil {
		if name := namedPlaceQuery(c); name != "" {
			return name
		}
		if addr := joinedAddress(c); addr != "" {
			return addr
		}
	}

	return strings.TrimSpace(d.Original)
}

// namedPlaceQuery prefers the business name over the landmark name and
// appends city and state so the text search stays anchored.
func namedPlaceQuery(c *Components) string {
	name := c.BusinessName
	if name == "" {
		name = c.Landmark
	}
	if name == "" {
		return ""
	}

	parts := []string{name}
	if c.City != "" {
		parts = append(parts, c.City)
	}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	return strings.Join(parts, " ")
}

func joinedAddress(c *Components) string {
	street := strings.TrimSpace(strings.Join(nonEmpty(c.StreetNumber, c.StreetName), " "))

	parts := nonEmpty(street, c.City, c.State, c.PostalCode, c.Country)
	return strings.Join(parts, ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
