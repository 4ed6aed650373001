package models

import (
	"fmt"
	"strings"
)

// DifficultyFilter narrows a view to one level; DifficultyAll disables it.
type DifficultyFilter string

const DifficultyAll DifficultyFilter = "all"

func ParseDifficultyFilter(s string) (DifficultyFilter, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(DifficultyAll)) {
		return DifficultyAll, nil
	}
	d, err := ParseDifficulty(s)
	if err != nil {
		return "", err
	}
	return DifficultyFilter(d), nil
}

// Matches reports whether d passes the filter.
func (f DifficultyFilter) Matches(d Difficulty) bool {
	return f == DifficultyAll || f == "" || Difficulty(f) == d
}

// Tab selects which collection a view shows.
type Tab string

const (
	TabAll Tab = "all"
	TabMy  Tab = "my"
)

func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabAll, TabMy:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, s)
}
