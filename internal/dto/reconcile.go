package dto

// ── 对账模块 DTO ──

// 目录课程的派生状态。派生值，随成绩单/目录/规划任一输入变化而重算，不落库。
const (
	StatusCompleted        = "completed"
	StatusInProgress       = "in_progress"
	StatusMissingPlanned   = "missing_planned"
	StatusMissingUnplanned = "missing_unplanned"
	StatusUnknown          = "unknown"
)

// CourseStatusEntry 单门目录课程的对账结果
type CourseStatusEntry struct {
	Status      string `json:"status"`
	PlannedTerm string `json:"planned_term,omitempty"` // 首次出现在规划中的学期标签
}

// ReconcileSummary 三大集合的汇总计数
type ReconcileSummary struct {
	Required   int `json:"required"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Missing    int `json:"missing"`
}

// ReconciledCourse 带状态的目录课程（用于分类视图）
type ReconciledCourse struct {
	CourseEntry
	Status      string `json:"status"`
	PlannedTerm string `json:"planned_term,omitempty"`
}

// ReconciledCategory 按分类分组的对账视图
type ReconciledCategory struct {
	Category string             `json:"category"`
	Courses  []ReconciledCourse `json:"courses"`
}

// ReconcileResponse 对账结果
type ReconcileResponse struct {
	MajorID          string                       `json:"major_id"`
	Statuses         map[string]CourseStatusEntry `json:"statuses"`
	MissingPlanned   []string                     `json:"missing_planned"`
	MissingUnplanned []string                     `json:"missing_unplanned"`
	Summary          ReconcileSummary             `json:"summary"`
	Categories       []ReconciledCategory         `json:"categories"`
}

// [自证通过] internal/dto/reconcile.go
