package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
)

const msgUsersFailed = "Failed to load users"

// Users lists registered users.
func (a *App) Users(ctx context.Context) error {
	users, err := a.api.ListUsers(ctx, client.Page{})
	if err != nil {
		a.report(ctx, err, msgUsersFailed)
		return err
	}
	if len(users) == 0 {
		a.println("No users.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tJOINED\t")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t\n", u.ID, u.Username, formatTime(u.CreatedAt.Time))
	}
	return w.Flush()
}

// User prints one user profile and the skills they offer.
func (a *App) User(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		a.println("Usage: user <id>")
		return err
	}
	u, err := a.api.GetUser(ctx, id)
	if err != nil {
		a.report(ctx, err, msgUsersFailed)
		return err
	}
	a.printf("%s (id %d), joined %s\n", u.Username, u.ID, formatTime(u.CreatedAt.Time))

	skills, err := a.api.ListSkills(ctx, client.SkillQuery{OwnerID: u.ID})
	if err != nil {
		a.report(ctx, err, "Failed to load skills")
		return err
	}
	for _, s := range skills {
		a.printf("  %d  %s (%s)\n", s.ID, s.Title, s.Difficulty)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
