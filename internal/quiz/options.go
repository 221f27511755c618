package quiz

import (
	"fmt"
	"regexp"

	"github.com/example/vocadrill/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`^Option ([A-Z]|\d+)$`)

// IsPlaceholder reports whether an option is a generated filler label
// rather than a real word.
func IsPlaceholder(option string) bool {
	return placeholderPattern.MatchString(option)
}

// optionSet collects up to OptionCount distinct, non-empty options in order.
type optionSet struct {
	items []string
	seen  map[string]bool
}

func newOptionSet(first string) *optionSet {
	s := &optionSet{seen: make(map[string]bool)}
	s.add(first)
	return s
}

func (s *optionSet) full() bool {
	return len(s.items) >= models.OptionCount
}

func (s *optionSet) add(option string) bool {
	if s.full() || option == "" || s.seen[option] {
		return false
	}
	s.seen[option] = true
	s.items = append(s.items, option)
	return true
}

// padLetters fills with "Option A", "Option B", ... skipping labels in use.
func (s *optionSet) padLetters() {
	for letter := 'A'; !s.full() && letter <= 'Z'; letter++ {
		s.add(fmt.Sprintf("Option %c", letter))
	}
}

// padNumbers fills with "Option n" where n starts at the current count.
func (s *optionSet) padNumbers() {
	for n := len(s.items); !s.full(); n++ {
		s.add(fmt.Sprintf("Option %d", n))
	}
}
