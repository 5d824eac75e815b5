package docs

import (
	"strings"
	"testing"
)

func TestAll_StartsWithQuickstart(t *testing.T) {
	topics := All()
	if len(topics) == 0 {
		t.Fatal("All() returned no topics")
	}
	if topics[0].Name != "quickstart" {
		t.Errorf("first topic = %q, want %q", topics[0].Name, "quickstart")
	}
}

func TestAll_FieldsAndUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, topic := range All() {
		if topic.Name == "" || topic.Title == "" || topic.Summary == "" || topic.Content == "" {
			t.Errorf("topic %q has an empty field", topic.Name)
		}
		if seen[topic.Name] {
			t.Errorf("duplicate topic name: %q", topic.Name)
		}
		seen[topic.Name] = true
	}
}

func TestLookup(t *testing.T) {
	topic, err := Lookup("Manifest")
	if err != nil {
		t.Fatalf("Lookup(Manifest): %v", err)
	}
	if topic.Name != "manifest" {
		t.Fatalf("Name = %q, want manifest", topic.Name)
	}
}

func TestLookup_UnknownListsTopics(t *testing.T) {
	_, err := Lookup("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown topic")
	}
	for _, name := range Names() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list %q", err, name)
		}
	}
}

func TestQuickstart_ListsEveryCommand(t *testing.T) {
	topic, err := Lookup("quickstart")
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"init", "pages", "run", "check", "history", "docs"} {
		if !strings.Contains(topic.Content, "spdocs "+cmd) {
			t.Errorf("quickstart does not mention %q", "spdocs "+cmd)
		}
	}
}
