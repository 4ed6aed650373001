package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/services"
	"github.com/dmitrijs2005/skillswap/internal/common"
)

const (
	msgCreateFailed = "Failed to create skill"
	msgUpdateFailed = "Failed to update skill"
	msgDeleteFailed = "Failed to delete skill"
	msgFetchFailed  = "Failed to fetch skill"
)

// Skills loads both collections and prints the current view.
func (a *App) Skills(ctx context.Context) error {
	if err := a.skills.Load(ctx); err != nil {
		a.report(ctx, err, a.skills.LastError())
		return err
	}
	a.printView()
	return nil
}

// Refresh reloads without printing the list.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.skills.Load(ctx); err != nil {
		a.report(ctx, err, a.skills.LastError())
		return err
	}
	a.printf("Loaded %d skills (%d yours).\n", len(a.skills.All()), len(a.skills.Mine()))
	return nil
}

func (a *App) Search(_ context.Context, term string) error {
	a.skills.SetSearch(term)
	a.printView()
	return nil
}

func (a *App) Difficulty(_ context.Context, arg string) error {
	f, err := models.ParseDifficultyFilter(arg)
	if err != nil {
		a.println("Usage: difficulty <all|beginner|intermediate|advanced>")
		return err
	}
	a.skills.SetDifficulty(f)
	a.printView()
	return nil
}

func (a *App) Tab(_ context.Context, arg string) error {
	t, err := models.ParseTab(arg)
	if err != nil {
		a.println("Usage: tab <all|my>")
		return err
	}
	a.skills.SetTab(t)
	a.printView()
	return nil
}

// Show prints one skill fetched from the server.
func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println("Usage: show <id>")
		return err
	}
	s, err := a.skills.Get(ctx, id)
	if err != nil {
		a.report(ctx, err, msgFetchFailed)
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", s.ID)
	fmt.Fprintf(w, "Title:\t%s\n", s.Title)
	fmt.Fprintf(w, "Difficulty:\t%s\n", s.Difficulty)
	fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(s.Tags, ", "))
	fmt.Fprintf(w, "Owner:\t%d\n", s.OwnerID)
	fmt.Fprintf(w, "Created:\t%s\n", formatTime(s.CreatedAt.Time))
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:\t%s\n", formatTime(s.UpdatedAt.Time))
	}
	fmt.Fprintf(w, "Description:\t%s\n", s.Description)
	if services.CanEdit(*s, a.session.Snapshot().CurrentUser) {
		fmt.Fprintf(w, "\t(yours: edit %d / delete %d)\n", s.ID, s.ID)
	}
	return w.Flush()
}

// Add prompts for a new skill and submits it.
func (a *App) Add(ctx context.Context) error {
	in, err := a.promptSkill(models.Skill{Difficulty: models.DifficultyBeginner}, false)
	if err != nil {
		return err
	}

	created, err := a.skills.Create(ctx, in)
	if err != nil {
		a.report(ctx, err, msgCreateFailed)
		return err
	}
	a.printf("Created skill %d.\n", created.ID)
	a.warnLoad()
	return nil
}

// Edit prompts for changes to one of the user's skills and submits only the
// fields that differ.
func (a *App) Edit(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println("Usage: edit <id>")
		return err
	}
	before, err := a.skills.Get(ctx, id)
	if err != nil {
		a.report(ctx, err, msgFetchFailed)
		return err
	}
	if !services.CanEdit(*before, a.session.Snapshot().CurrentUser) {
		a.println("You can only edit your own skills.")
		return nil
	}

	after, err := a.promptSkill(*before, true)
	if err != nil {
		return err
	}
	patch := models.PatchFrom(*before, after)
	if patch.IsEmpty() {
		a.println("Nothing to change.")
		return nil
	}

	if _, err := a.skills.Update(ctx, id, patch); err != nil {
		a.report(ctx, err, msgUpdateFailed)
		return err
	}
	a.printf("Updated skill %d.\n", id)
	a.warnLoad()
	return nil
}

// Delete asks for confirmation and removes the skill.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println("Usage: delete <id>")
		return err
	}

	confirm := func() bool {
		return GetConfirmation(a.reader, fmt.Sprintf("Delete skill %d?", id), a.out)
	}
	if err := a.skills.Delete(ctx, id, confirm); err != nil {
		if errors.Is(err, common.ErrNotConfirmed) {
			a.println("Cancelled.")
			return nil
		}
		a.report(ctx, err, msgDeleteFailed)
		return err
	}
	a.printf("Deleted skill %d.\n", id)
	a.warnLoad()
	return nil
}

// promptSkill asks for every field. When editing, an empty answer keeps the
// current value and "-" clears the tags.
func (a *App) promptSkill(current models.Skill, editing bool) (models.SkillInput, error) {
	hint := func(v string) string {
		if editing || v != "" {
			return fmt.Sprintf(" [%s]", v)
		}
		return ""
	}

	in := models.SkillInput{
		Title:       current.Title,
		Description: current.Description,
		Difficulty:  current.Difficulty,
		Tags:        append(models.Tags{}, current.Tags...),
	}

	title, err := getSimpleText(a.reader, "Title"+hint(current.Title), a.out)
	if err != nil {
		return in, err
	}
	if title != "" {
		in.Title = title
	}

	desc, err := getSimpleText(a.reader, "Description"+hint(current.Description), a.out)
	if err != nil {
		return in, err
	}
	if desc != "" {
		in.Description = desc
	}

	for {
		answer, err := getSimpleText(a.reader, "Difficulty (beginner, intermediate, advanced)"+hint(string(current.Difficulty)), a.out)
		if err != nil {
			return in, err
		}
		if answer == "" {
			break
		}
		d, err := models.ParseDifficulty(answer)
		if err == nil {
			in.Difficulty = d
			break
		}
		a.println("Unknown difficulty.")
	}

	tagPrompt := "Tags, comma separated"
	if editing {
		tagPrompt += ", '-' to clear"
	}
	answer, err := getSimpleText(a.reader, tagPrompt+hint(strings.Join(current.Tags, ", ")), a.out)
	if err != nil {
		return in, err
	}
	switch {
	case answer == "-" && editing:
		in.Tags = models.Tags{}
	case answer != "":
		tags, rejected := parseTags(answer)
		if len(rejected) > 0 {
			a.println("Skipped duplicate tags:", strings.Join(rejected, ", "))
		}
		in.Tags = tags
	}
	return in, nil
}

// parseTags splits a comma separated list, dropping blanks and reporting
// repeats.
func parseTags(s string) (models.Tags, []string) {
	tags := models.Tags{}
	var rejected []string
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		var ok bool
		if tags, ok = tags.Add(part); !ok {
			rejected = append(rejected, strings.TrimSpace(part))
		}
	}
	return tags, rejected
}

func (a *App) printView() {
	search, difficulty, tab := a.skills.Criteria()
	view := a.skills.Current()

	filters := fmt.Sprintf("tab=%s difficulty=%s", tab, difficulty)
	if search != "" {
		filters += fmt.Sprintf(" search=%q", search)
	}
	a.println(filters)

	if len(view) == 0 {
		a.println("No skills found.")
		return
	}

	user := a.session.Snapshot().CurrentUser
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tTAGS\tOWNER\t")
	for _, s := range view {
		owner := strconv.FormatInt(s.OwnerID, 10)
		if services.CanEdit(s, user) {
			owner = "you"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", s.ID, s.Title, s.Difficulty, strings.Join(s.Tags, ", "), owner)
	}
	_ = w.Flush()
}

// warnLoad surfaces a failed reload that followed a successful mutation.
func (a *App) warnLoad() {
	if msg := a.skills.LastError(); msg != "" {
		a.println("Warning: list not refreshed:", msg)
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrInvalidInput, arg)
	}
	return id, nil
}
