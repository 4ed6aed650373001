package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/common"
	"github.com/dmitrijs2005/skillswap/internal/logging"
	"golang.org/x/sync/errgroup"
)

const msgLoadFailed = "Failed to load skills"

// SkillCollectionController holds the two skill snapshots of a view (every
// skill and the caller's own) together with the view criteria. Mutations
// never patch the snapshots locally; a successful one is followed by a full
// Load.
type SkillCollectionController struct {
	client client.Client
	log    logging.Logger

	mu         sync.RWMutex
	all        []models.Skill
	mine       []models.Skill
	loading    bool
	lastError  string
	generation uint64

	search     string
	difficulty models.DifficultyFilter
	tab        models.Tab
}

func NewSkillCollectionController(c client.Client, log logging.Logger) *SkillCollectionController {
	if log == nil {
		log = logging.Discard()
	}
	return &SkillCollectionController{
		client:     c,
		log:        log.With("component", "skills"),
		difficulty: models.DifficultyAll,
		tab:        models.TabAll,
	}
}

// Load fetches both collections concurrently. If either request fails the
// other is cancelled and the previous snapshots are kept. A load that
// completes after a newer one has started is discarded.
func (c *SkillCollectionController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	var all, mine []models.Skill
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		skills, err := c.client.ListSkills(gctx, client.SkillQuery{})
		if err != nil {
			return fmt.Errorf("list skills: %w", err)
		}
		all = skills
		return nil
	})
	g.Go(func() error {
		skills, err := c.client.MySkills(gctx)
		if err != nil {
			return fmt.Errorf("list my skills: %w", err)
		}
		mine = skills
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug(ctx, "discarding stale load", "generation", gen, "current", c.generation)
		return err
	}

	c.loading = false
	if err != nil {
		c.lastError = client.Message(err, msgLoadFailed)
		c.log.Warn(ctx, "load failed", "error", err)
		return err
	}

	c.all = nonNil(all)
	c.mine = nonNil(mine)
	c.lastError = ""
	c.log.Debug(ctx, "skills loaded", "all", len(c.all), "mine", len(c.mine))
	return nil
}

// Create validates and submits in, then reloads. A failure of the reload
// is reported through LastError, not the returned error, since the skill
// was created.
func (c *SkillCollectionController) Create(ctx context.Context, in models.SkillInput) (*models.Skill, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := c.client.CreateSkill(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	c.log.Info(ctx, "skill created", "id", created.ID)
	c.reload(ctx)
	return created, nil
}

// Update validates and submits patch for skill id, then reloads.
func (c *SkillCollectionController) Update(ctx context.Context, id int64, patch models.SkillPatch) (*models.Skill, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	updated, err := c.client.UpdateSkill(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update skill %d: %w", id, err)
	}
	c.log.Info(ctx, "skill updated", "id", id)
	c.reload(ctx)
	return updated, nil
}

// Delete removes skill id once confirm returns true, then reloads. Without
// confirmation no request is made and common.ErrNotConfirmed is returned.
func (c *SkillCollectionController) Delete(ctx context.Context, id int64, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return common.ErrNotConfirmed
	}
	if err := c.client.DeleteSkill(ctx, id); err != nil {
		return fmt.Errorf("delete skill %d: %w", id, err)
	}
	c.log.Info(ctx, "skill deleted", "id", id)
	c.reload(ctx)
	return nil
}

// Get fetches a single skill for the detail screen. It does not touch the
// snapshots.
func (c *SkillCollectionController) Get(ctx context.Context, id int64) (*models.Skill, error) {
	s, err := c.client.GetSkill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get skill %d: %w", id, err)
	}
	return s, nil
}

func (c *SkillCollectionController) reload(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		c.log.Warn(ctx, "reload after mutation failed", "error", err)
	}
}

// View derives what a view shows from the stored snapshots. It has no side
// effects and keeps the fetched order.
func (c *SkillCollectionController) View(search string, difficulty models.DifficultyFilter, tab models.Tab) []models.Skill {
	c.mu.RLock()
	source := c.all
	if tab == models.TabMy {
		source = c.mine
	}
	out := Filter(source, search, difficulty)
	c.mu.RUnlock()
	return out
}

// Filter keeps the skills whose title, description or a tag contains
// search (case-insensitive, whitespace included) and whose difficulty passes
// the filter. The result and its tag lists are fresh copies.
func Filter(skills []models.Skill, search string, difficulty models.DifficultyFilter) []models.Skill {
	term := strings.ToLower(search)
	out := make([]models.Skill, 0, len(skills))
	for _, s := range skills {
		if !difficulty.Matches(s.Difficulty) {
			continue
		}
		if term != "" && !matchesTerm(s, term) {
			continue
		}
		s.Tags = cloneTags(s.Tags)
		out = append(out, s)
	}
	return out
}

func matchesTerm(s models.Skill, term string) bool {
	if strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.Description), term) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (c *SkillCollectionController) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

func (c *SkillCollectionController) SetDifficulty(f models.DifficultyFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.difficulty = f
}

func (c *SkillCollectionController) SetTab(t models.Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = t
}

// Criteria returns the stored search term, difficulty filter and tab.
func (c *SkillCollectionController) Criteria() (string, models.DifficultyFilter, models.Tab) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search, c.difficulty, c.tab
}

// Current is View applied to the stored criteria.
func (c *SkillCollectionController) Current() []models.Skill {
	search, difficulty, tab := c.Criteria()
	return c.View(search, difficulty, tab)
}

// All and Mine return copies of the snapshots.
func (c *SkillCollectionController) All() []models.Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSkills(c.all)
}

func (c *SkillCollectionController) Mine() []models.Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSkills(c.mine)
}

func (c *SkillCollectionController) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *SkillCollectionController) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// CanEdit decides whether edit controls are offered for s. It is a display
// hint; the server enforces ownership.
func CanEdit(s models.Skill, user *models.User) bool {
	return user != nil && s.OwnerID == user.ID
}

func cloneSkills(s []models.Skill) []models.Skill {
	out := make([]models.Skill, len(s))
	copy(out, s)
	for i := range out {
		out[i].Tags = cloneTags(out[i].Tags)
	}
	return out
}

func cloneTags(t models.Tags) models.Tags {
	if t == nil {
		return nil
	}
	return append(models.Tags{}, t...)
}

func nonNil(s []models.Skill) []models.Skill {
	if s == nil {
		return []models.Skill{}
	}
	return s
}
