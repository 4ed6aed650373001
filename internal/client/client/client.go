package client

import (
	"context"

	"github.com/dmitrijs2005/skillswap/internal/client/models"
)

// SkillQuery holds the optional server-side filters of the skills listing.
// Zero values are omitted from the request.
type SkillQuery struct {
	Skip    int
	Limit   int
	OwnerID int64
}

// Page selects a window of a listing. Zero values are omitted.
type Page struct {
	Skip  int
	Limit int
}

// Client is the backend contract consumed by the session and skills
// services. Login only returns the token; persisting it is the caller's job.
type Client interface {
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Me(ctx context.Context) (*models.User, error)

	ListSkills(ctx context.Context, q SkillQuery) ([]models.Skill, error)
	MySkills(ctx context.Context) ([]models.Skill, error)
	GetSkill(ctx context.Context, id int64) (*models.Skill, error)
	CreateSkill(ctx context.Context, in models.SkillInput) (*models.Skill, error)
	UpdateSkill(ctx context.Context, id int64, patch models.SkillPatch) (*models.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error

	ListUsers(ctx context.Context, p Page) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)

	Ping(ctx context.Context) error
}
