package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
	"github.com/dmitrijs2005/skillswap/internal/client/models"
)

// fakeClient implements client.Client. Zero-valued hooks return zero values.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterFn    func(ctx context.Context, reg models.Registration) error
	LoginFn       func(ctx context.Context, creds models.Credentials) (string, error)
	MeFn          func(ctx context.Context) (*models.User, error)
	ListSkillsFn  func(ctx context.Context, q client.SkillQuery) ([]models.Skill, error)
	MySkillsFn    func(ctx context.Context) ([]models.Skill, error)
	GetSkillFn    func(ctx context.Context, id int64) (*models.Skill, error)
	CreateSkillFn func(ctx context.Context, in models.SkillInput) (*models.Skill, error)
	UpdateSkillFn func(ctx context.Context, id int64, patch models.SkillPatch) (*models.Skill, error)
	DeleteSkillFn func(ctx context.Context, id int64) error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) error {
	f.hit("Register")
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, reg)
	}
	return nil
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	f.hit("Login")
	if f.LoginFn != nil {
		return f.LoginFn(ctx, creds)
	}
	return "", nil
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	f.hit("Me")
	if f.MeFn != nil {
		return f.MeFn(ctx)
	}
	return nil, nil
}

func (f *fakeClient) ListSkills(ctx context.Context, q client.SkillQuery) ([]models.Skill, error) {
	f.hit("ListSkills")
	if f.ListSkillsFn != nil {
		return f.ListSkillsFn(ctx, q)
	}
	return nil, nil
}

func (f *fakeClient) MySkills(ctx context.Context) ([]models.Skill, error) {
	f.hit("MySkills")
	if f.MySkillsFn != nil {
		return f.MySkillsFn(ctx)
	}
	return nil, nil
}

func (f *fakeClient) GetSkill(ctx context.Context, id int64) (*models.Skill, error) {
	f.hit("GetSkill")
	if f.GetSkillFn != nil {
		return f.GetSkillFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeClient) CreateSkill(ctx context.Context, in models.SkillInput) (*models.Skill, error) {
	f.hit("CreateSkill")
	if f.CreateSkillFn != nil {
		return f.CreateSkillFn(ctx, in)
	}
	return &models.Skill{}, nil
}

func (f *fakeClient) UpdateSkill(ctx context.Context, id int64, patch models.SkillPatch) (*models.Skill, error) {
	f.hit("UpdateSkill")
	if f.UpdateSkillFn != nil {
		return f.UpdateSkillFn(ctx, id, patch)
	}
	return &models.Skill{ID: id}, nil
}

func (f *fakeClient) DeleteSkill(ctx context.Context, id int64) error {
	f.hit("DeleteSkill")
	if f.DeleteSkillFn != nil {
		return f.DeleteSkillFn(ctx, id)
	}
	return nil
}

func (f *fakeClient) ListUsers(ctx context.Context, p client.Page) ([]models.User, error) {
	f.hit("ListUsers")
	return nil, nil
}

func (f *fakeClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	f.hit("GetUser")
	return nil, nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.hit("Ping")
	return nil
}

// failingStore is a tokenstore.Store whose operations all fail.
type failingStore struct{ err error }

func (s failingStore) Get(context.Context) (string, error) { return "", s.err }
func (s failingStore) Set(context.Context, string) error   { return s.err }
func (s failingStore) Delete(context.Context) error        { return s.err }
