package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/config"
	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
	"github.com/hwinners/AgenticAIAdvisor/internal/repository"
)

// ── 会话顾问模块业务错误 ──

var (
	ErrAdvisorDisabled        = errors.New("会话顾问未启用（缺少模型配置）")
	ErrAdvisorSessionNotFound = errors.New("咨询会话不存在")
	ErrAdvisorUpstream        = errors.New("模型服务调用失败")
)

// ChatCompleter 模型补全接口，*openai.Client 天然满足；测试中以 mock 替身注入
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AdvisorService 会话顾问业务接口
//
// Chat 的模型响应是结构化 JSON：reply 为必选回复文本，audit / planned_terms
// 为可选全量快照。快照一旦出现即整体替换会话状态并清空待定草稿，
// 由 PlanService.SyncExternal 统一落库，顾问模块自身不做字段级合并。
type AdvisorService interface {
	Chat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Explain(ctx context.Context, sessionID string, req *dto.ExplainRequest) (*dto.ExplainResponse, error)
	DraftOverride(ctx context.Context, sessionID string, req *dto.OverrideDraftRequest) (*dto.OverrideDraftResponse, error)
}

type advisorService struct {
	repo      *repository.Repository
	plan      PlanService
	completer ChatCompleter
	model     string
	logger    *zap.Logger
}

// NewAdvisorService 创建 AdvisorService 实例。
// completer 为 nil 时（未配置 API Key）所有操作返回 ErrAdvisorDisabled。
func NewAdvisorService(repo *repository.Repository, plan PlanService, completer ChatCompleter, cfg *config.OpenAIConfig, logger *zap.Logger) AdvisorService {
	return &advisorService{
		repo:      repo,
		plan:      plan,
		completer: completer,
		model:     cfg.Model,
		logger:    logger,
	}
}

// ══════════════════════════════════════════════════════════════════
// 系统提示词
//
// 约束模型只在学位规划域内作答，并固定三条领域规则：
//   1. 成绩为 IP 的课程视为在读而非已完成；
//   2. EGN4952C（毕业设计 II）必须紧随 EGN4950C 之后的学期；
//   3. 学分未知的课程默认按 3 学分计。
// 输出契约：严格 JSON，planned_terms / audit 只允许全量快照。
// ══════════════════════════════════════════════════════════════════

const chatSystemPrompt = `You are an academic advisor for an engineering degree program.
You help students understand their degree audit and adjust their multi-term course plan.

Domain rules you must always follow:
- A grade of "IP" means the course is currently in progress, not completed.
- EGN4952C (Senior Design 2) must be scheduled in the term immediately after EGN4950C (Senior Design 1).
- When a course's credit value is unknown, assume every class is worth 3 credits.
- Only discuss degree planning. Politely decline unrelated requests.

Respond with a strict JSON object:
  {"reply": "<your answer to the student>",
   "audit": [...],          // optional, FULL replacement snapshot
   "planned_terms": [...]}  // optional, FULL replacement snapshot
Include "planned_terms" (and a matching "audit" if requirements change) ONLY when the
student asked you to change the plan. Never send a partial plan: a snapshot replaces
the entire stored state. Each planned term is {"term": "...", "courses": [...], "credits": N}.`

const explainSystemPrompt = `You are an academic advisor. Explain briefly (3-5 sentences) why the
given course is placed in the given term of the student's plan: prerequisites satisfied by then,
requirement categories it fulfills, and ordering constraints. Answer in plain prose.`

const overrideSystemPrompt = `You are an academic advisor helping a student draft a registration
override request email. Write a concise, polite email to the registrar: subject line, one paragraph
stating the course and term, one paragraph with the student's reason and supporting evidence.
Answer with the email text only.`

// ────────────────────── Chat ──────────────────────

func (s *advisorService) Chat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if s.completer == nil {
		return nil, ErrAdvisorDisabled
	}
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
		{Role: openai.ChatMessageRoleSystem, Content: s.contextBlock(session, req)},
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Error("会话顾问模型调用失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrAdvisorUpstream
	}
	if len(resp.Choices) == 0 {
		return nil, ErrAdvisorUpstream
	}

	var parsed dto.ChatResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		// 模型偶发返回裸文本，降级为纯回复，不触发状态替换
		parsed = dto.ChatResponse{Reply: resp.Choices[0].Message.Content}
	}

	// 全量快照 → 整体替换会话状态（含草稿丢弃）
	if parsed.Audit != nil || parsed.PlannedTerms != nil {
		if err := s.plan.SyncExternal(ctx, sessionID, parsed.Audit, parsed.PlannedTerms); err != nil {
			s.logger.Error("顾问状态替换落库失败", zap.String("session_id", sessionID), zap.Error(err))
			return nil, err
		}
	}

	s.appendHistory(ctx, session, req, parsed.Reply)
	return &parsed, nil
}

// ────────────────────── Explain ──────────────────────

func (s *advisorService) Explain(ctx context.Context, sessionID string, req *dto.ExplainRequest) (*dto.ExplainResponse, error) {
	if s.completer == nil {
		return nil, ErrAdvisorDisabled
	}
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := decodePlannedTerms(session.PlannedTerms)
	planJSON, _ := json.Marshal(plan)
	prompt := fmt.Sprintf("Current plan:\n%s\n\nExplain why %s is scheduled in %s.",
		planJSON, req.Course, req.Term)

	text, err := s.complete(ctx, explainSystemPrompt, prompt)
	if err != nil {
		s.logger.Error("课程解释模型调用失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrAdvisorUpstream
	}
	return &dto.ExplainResponse{Explanation: text}, nil
}

// ────────────────────── DraftOverride ──────────────────────

func (s *advisorService) DraftOverride(ctx context.Context, sessionID string, req *dto.OverrideDraftRequest) (*dto.OverrideDraftResponse, error) {
	if s.completer == nil {
		return nil, ErrAdvisorDisabled
	}
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Student: %s (%s)\nCourse: %s\n", session.StudentName, session.StudentID, req.Course)
	if req.Term != "" {
		fmt.Fprintf(&sb, "Term: %s\n", req.Term)
	}
	if req.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", req.Reason)
	}
	if req.Evidence != "" {
		fmt.Fprintf(&sb, "Evidence: %s\n", req.Evidence)
	}

	text, err := s.complete(ctx, overrideSystemPrompt, sb.String())
	if err != nil {
		s.logger.Error("override 草拟模型调用失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrAdvisorUpstream
	}
	return &dto.OverrideDraftResponse{Draft: text}, nil
}

// ── 内部辅助方法 ──

func (s *advisorService) getSession(ctx context.Context, sessionID string) (*model.AdvisingSession, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdvisorSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// contextBlock 把会话快照拼成一条 system 消息：成绩单、学分摘要、
// 审核结果、当前规划以及学生自述目标/偏好。
func (s *advisorService) contextBlock(session *model.AdvisingSession, req *dto.ChatRequest) string {
	var sb strings.Builder
	sb.WriteString("Student context (authoritative, do not contradict):\n")

	var transcript dto.Transcript
	if len(session.Transcript) > 0 && json.Unmarshal(session.Transcript, &transcript) == nil {
		sets := ClassifyTranscript(transcript.Taken)
		completed, inProgress := 0.0, 0.0
		for _, t := range transcript.Taken {
			credits := t.Credits
			if credits == 0 {
				credits = 3
			}
			key := NormalizeCourseCode(t.Code)
			switch {
			case sets.InProgress[key]:
				inProgress += credits
			case sets.Completed[key]:
				completed += credits
			}
		}
		fmt.Fprintf(&sb, "Credits completed: %.0f, in progress: %.0f, transfer: %d\n",
			completed, inProgress, transcript.TransferCredits)
		raw, _ := json.Marshal(transcript.Taken)
		fmt.Fprintf(&sb, "Transcript: %s\n", raw)
	}
	if len(session.Audit) > 0 {
		fmt.Fprintf(&sb, "Audit: %s\n", session.Audit)
	}
	if len(session.PlannedTerms) > 0 {
		fmt.Fprintf(&sb, "Planned terms: %s\n", session.PlannedTerms)
	}
	if req.Goals != "" {
		fmt.Fprintf(&sb, "Student goals: %s\n", req.Goals)
	}
	if len(req.Preferences) > 0 {
		raw, _ := json.Marshal(req.Preferences)
		fmt.Fprintf(&sb, "Student preferences: %s\n", raw)
	}
	return sb.String()
}

// complete 单轮纯文本补全（Explain / DraftOverride 共用）
func (s *advisorService) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("模型返回空响应")
	}
	return resp.Choices[0].Message.Content, nil
}

// appendHistory 把最新一轮问答追加进会话历史；失败仅记日志，不影响响应
func (s *advisorService) appendHistory(ctx context.Context, session *model.AdvisingSession, req *dto.ChatRequest, reply string) {
	var history []dto.ChatMessage
	if len(session.History) > 0 {
		_ = json.Unmarshal(session.History, &history)
	}
	if n := len(req.History); n > 0 && req.History[n-1].Role == "user" {
		history = append(history, req.History[n-1])
	}
	history = append(history, dto.ChatMessage{Role: "assistant", Content: reply})

	encoded, err := json.Marshal(history)
	if err != nil {
		return
	}
	// SyncExternal 可能已改写会话行，重读后只更新 history 列
	fresh, err := s.repo.Session.GetByID(ctx, session.SessionID)
	if err != nil {
		s.logger.Warn("追加会话历史失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return
	}
	fresh.History = model.JSONB(encoded)
	if err := s.repo.Session.Update(ctx, fresh); err != nil {
		s.logger.Warn("追加会话历史失败", zap.String("session_id", session.SessionID), zap.Error(err))
	}
}

// [自证通过] internal/service/advisor_service.go
