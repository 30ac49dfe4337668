package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hwinners/AgenticAIAdvisor/config"
	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
)

// ── Mock ChatCompleter ──

type mockCompleter struct {
	reply    string
	failWith error
	lastReq  openai.ChatCompletionRequest
}

func (m *mockCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastReq = req
	if m.failWith != nil {
		return openai.ChatCompletionResponse{}, m.failWith
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.reply}},
		},
	}, nil
}

func setupTestAdvisorService(completer ChatCompleter) (AdvisorService, *mockSessionRepo) {
	programRepo := newMockProgramRepo()
	programRepo.programs["BSComputerScience"] = &model.Program{ProgramID: "BSComputerScience"}
	catalogRepo := newMockCatalogRepo()
	sessionRepo := newMockSessionRepo()
	repo := newTestRepo(programRepo, catalogRepo, sessionRepo)
	catalog := NewCatalogService(repo, nil, &config.CatalogConfig{}, zap.NewNop())
	plan := NewPlanService(repo, catalog, zap.NewNop())
	svc := NewAdvisorService(repo, plan, completer, &config.OpenAIConfig{Model: "gpt-4o-mini"}, zap.NewNop())
	return svc, sessionRepo
}

func seedAdvisorSession(sessionRepo *mockSessionRepo) *model.AdvisingSession {
	session := &model.AdvisingSession{
		SessionID:    "s-001",
		StudentID:    "Z12345678",
		StudentName:  "Jordan Diaz",
		MajorID:      "BSComputerScience",
		Transcript:   model.JSONB(`{"taken":[{"code":"MAC2311","grade":"A"},{"code":"COP3530","grade":"IP"}]}`),
		PlannedTerms: model.JSONB(`[{"term":"Fall 2026","courses":["CDA3103"],"credits":3}]`),
		DraftState:   model.DraftStateDrafting,
		DraftCourses: model.StringArray{"CDA3103"},
		DraftTerm:    "Fall 2026",
	}
	sessionRepo.sessions[session.SessionID] = session
	return session
}

// ── Chat 测试 ──

func TestAdvisorService_Chat_ReplyOnly(t *testing.T) {
	completer := &mockCompleter{reply: `{"reply":"你已修完 Calculus 1。"}`}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	resp, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{
		History: []dto.ChatMessage{{Role: "user", Content: "我修完微积分了吗？"}},
	})
	if err != nil {
		t.Fatalf("Chat 应成功: %v", err)
	}
	if resp.Reply == "" {
		t.Error("应返回回复文本")
	}
	// 无快照 ⇒ 不触发状态替换，草稿保留
	stored := sessionRepo.sessions["s-001"]
	if stored.DraftState != model.DraftStateDrafting {
		t.Errorf("纯回复不应动草稿，实际=%s", stored.DraftState)
	}
}

func TestAdvisorService_Chat_SnapshotReplacesState(t *testing.T) {
	completer := &mockCompleter{
		reply: `{"reply":"已为你改到春季。","planned_terms":[{"term":"Spring 2027","courses":["CEN4010"],"credits":3}]}`,
	}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	resp, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{
		History: []dto.ChatMessage{{Role: "user", Content: "把 CDA3103 挪到春季"}},
	})
	if err != nil {
		t.Fatalf("Chat 应成功: %v", err)
	}
	if len(resp.PlannedTerms) != 1 {
		t.Fatalf("响应应携带新规划，实际=%v", resp.PlannedTerms)
	}

	// 全量替换落库 + 草稿丢弃
	stored := sessionRepo.sessions["s-001"]
	if stored.DraftState != model.DraftStateIdle {
		t.Errorf("快照替换应清空草稿状态机，实际=%s", stored.DraftState)
	}
	if len(stored.DraftCourses) != 0 {
		t.Errorf("快照替换应丢弃草稿，实际=%v", stored.DraftCourses)
	}
	if stored.DraftTerm != "Spring 2027" {
		t.Errorf("草稿学期应对齐新第 0 学期，实际=%s", stored.DraftTerm)
	}
}

func TestAdvisorService_Chat_BareTextFallback(t *testing.T) {
	// 模型偶发返回裸文本：降级为纯回复，不触发状态替换
	completer := &mockCompleter{reply: "抱歉，我只能讨论学位规划。"}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	resp, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{})
	if err != nil {
		t.Fatalf("Chat 应成功: %v", err)
	}
	if resp.Reply != "抱歉，我只能讨论学位规划。" {
		t.Errorf("裸文本应原样作为回复，实际=%s", resp.Reply)
	}
	if resp.PlannedTerms != nil {
		t.Error("裸文本不应产生规划快照")
	}
}

func TestAdvisorService_Chat_Disabled(t *testing.T) {
	svc, sessionRepo := setupTestAdvisorService(nil)
	seedAdvisorSession(sessionRepo)

	_, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{})
	if !errors.Is(err, ErrAdvisorDisabled) {
		t.Errorf("期望 ErrAdvisorDisabled，实际: %v", err)
	}
}

func TestAdvisorService_Chat_UpstreamError(t *testing.T) {
	completer := &mockCompleter{failWith: errors.New("rate limited")}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	_, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{})
	if !errors.Is(err, ErrAdvisorUpstream) {
		t.Errorf("期望 ErrAdvisorUpstream，实际: %v", err)
	}
}

func TestAdvisorService_Chat_ContextCarriesState(t *testing.T) {
	completer := &mockCompleter{reply: `{"reply":"好的"}`}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	_, err := svc.Chat(context.Background(), "s-001", &dto.ChatRequest{Goals: "毕业后做安全方向"})
	if err != nil {
		t.Fatalf("Chat 应成功: %v", err)
	}

	// 上下文消息应包含成绩单与规划快照
	if len(completer.lastReq.Messages) < 2 {
		t.Fatal("应至少有系统提示与上下文两条消息")
	}
	ctxMsg := completer.lastReq.Messages[1].Content
	for _, want := range []string{"MAC2311", "Fall 2026", "毕业后做安全方向"} {
		if !strings.Contains(ctxMsg, want) {
			t.Errorf("上下文应包含 %q", want)
		}
	}
}

// ── Explain / DraftOverride 测试 ──

func TestAdvisorService_Explain(t *testing.T) {
	completer := &mockCompleter{reply: "CDA3103 安排在 Fall 2026 是因为其先修已满足。"}
	svc, sessionRepo := setupTestAdvisorService(completer)
	seedAdvisorSession(sessionRepo)

	resp, err := svc.Explain(context.Background(), "s-001", &dto.ExplainRequest{Course: "CDA3103", Term: "Fall 2026"})
	if err != nil {
		t.Fatalf("Explain 应成功: %v", err)
	}
	if resp.Explanation == "" {
		t.Error("应返回解释文本")
	}
}

func TestAdvisorService_DraftOverride_SessionNotFound(t *testing.T) {
	svc, _ := setupTestAdvisorService(&mockCompleter{reply: "draft"})

	_, err := svc.DraftOverride(context.Background(), "nonexistent", &dto.OverrideDraftRequest{Course: "CDA3103"})
	if !errors.Is(err, ErrAdvisorSessionNotFound) {
		t.Errorf("期望 ErrAdvisorSessionNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/advisor_service_test.go
