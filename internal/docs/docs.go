// Package docs holds the help topics printed by `spdocs docs`.
package docs

import (
	"fmt"
	"strings"
)

type Topic struct {
	Name    string
	Title   string
	Summary string
	Content string // plain text
}

// All returns the topics in the order they are listed.
func All() []Topic {
	return topics
}

// Names returns the topic slugs in listing order.
func Names() []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a topic by slug, ignoring case.
func Lookup(name string) (Topic, error) {
	for _, t := range topics {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("unknown topic %q (available: %s)", name, strings.Join(Names(), ", "))
}
