package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skillswap/internal/timex"
)

// Difficulty is the level a skill is taught at.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists the valid levels in ascending order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ParseDifficulty accepts a level name in any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, s)
	}
	return d, nil
}

// Tags is an ordered list of unique, trimmed, non-empty labels.
type Tags []string

// NewTags builds Tags from values, silently skipping blanks and repeats.
func NewTags(values ...string) Tags {
	t := make(Tags, 0, len(values))
	for _, v := range values {
		t, _ = t.Add(v)
	}
	return t
}

// Add appends tag after trimming it. It reports false, leaving t unchanged,
// when the trimmed tag is empty or already present.
func (t Tags) Add(tag string) (Tags, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || t.Contains(tag) {
		return t, false
	}
	return append(t, tag), true
}

// Remove returns a copy of t without tag.
func (t Tags) Remove(tag string) Tags {
	out := make(Tags, 0, len(t))
	for _, v := range t {
		if v != tag {
			out = append(out, v)
		}
	}
	return out
}

func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t Tags) unique() bool {
	seen := make(map[string]struct{}, len(t))
	for _, v := range t {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// Skill is a teachable skill listed by its owner.
type Skill struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        Tags       `json:"tags"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   timex.Time `json:"created_at"`
	UpdatedAt   timex.Time `json:"updated_at"`
}

// SkillInput is the body of a create request.
type SkillInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        Tags       `json:"tags"`
}

func (in SkillInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if !in.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	if !in.Tags.unique() {
		return fmt.Errorf("%w: duplicate tags", ErrInvalidInput)
	}
	return nil
}

// SkillPatch is the body of an update request. Nil fields are left as they
// are on the server.
type SkillPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	Tags        *Tags       `json:"tags,omitempty"`
}

func (p SkillPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Difficulty == nil && p.Tags == nil
}

func (p SkillPatch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrInvalidInput)
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, *p.Difficulty)
	}
	if p.Tags != nil && !p.Tags.unique() {
		return fmt.Errorf("%w: duplicate tags", ErrInvalidInput)
	}
	return nil
}

// PatchFrom builds the patch that turns before into after, covering only
// the fields that differ.
func PatchFrom(before Skill, after SkillInput) SkillPatch {
	var p SkillPatch
	if after.Title != before.Title {
		p.Title = &after.Title
	}
	if after.Description != before.Description {
		p.Description = &after.Description
	}
	if after.Difficulty != before.Difficulty {
		p.Difficulty = &after.Difficulty
	}
	if !equalTags(before.Tags, after.Tags) {
		tags := append(Tags{}, after.Tags...)
		p.Tags = &tags
	}
	return p
}

func equalTags(a, b Tags) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
