package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hwinners/AgenticAIAdvisor/config"
	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/model"
)

func setupTestCatalogService() (CatalogService, *mockProgramRepo, *mockCatalogRepo) {
	programRepo := newMockProgramRepo()
	catalogRepo := newMockCatalogRepo()
	repo := newTestRepo(programRepo, catalogRepo, newMockSessionRepo())
	svc := NewCatalogService(repo, nil, &config.CatalogConfig{}, zap.NewNop())
	return svc, programRepo, catalogRepo
}

func seedCSCourses(catalogRepo *mockCatalogRepo) {
	catalogRepo.courses["BSComputerScience"] = []model.CatalogCourse{
		{ProgramID: "BSComputerScience", Code: "ENC1101", RawCode: "ENC 1101", Name: "Composition", Credits: 3, Category: "General Education", Position: 0},
		{ProgramID: "BSComputerScience", Code: "MAC2311", RawCode: "MAC 2311", Name: "Calculus 1", Credits: 4, Category: "Math", Position: 1},
		{ProgramID: "BSComputerScience", Code: "COP3530", RawCode: "COP 3530", Name: "Data Structures", Credits: 3, Category: "CS Core", Position: 2},
		{ProgramID: "BSComputerScience", Code: "CIS4360", RawCode: "CIS 4360", Name: "Intro to Cybersecurity", Credits: 3, Category: "Tech Electives", Position: 3},
	}
}

// ── GetCatalog 测试 ──

func TestCatalogService_GetCatalog_UnknownMajor(t *testing.T) {
	svc, _, _ := setupTestCatalogService()

	_, err := svc.GetCatalog(context.Background(), "BSUnderwaterBasket")
	if !errors.Is(err, ErrMajorUnknown) {
		t.Errorf("期望 ErrMajorUnknown，实际: %v", err)
	}
}

func TestCatalogService_GetCatalog_CategoryOrder(t *testing.T) {
	svc, programRepo, catalogRepo := setupTestCatalogService()
	programRepo.programs["BSComputerScience"] = &model.Program{ProgramID: "BSComputerScience"}
	seedCSCourses(catalogRepo)

	resp, err := svc.GetCatalog(context.Background(), "BSComputerScience")
	if err != nil {
		t.Fatalf("GetCatalog 应成功: %v", err)
	}
	if resp.Total != 4 {
		t.Errorf("期望Total=4，实际=%d", resp.Total)
	}

	// 分类按固定优先序：Math 在 CS Core 前，General Education 靠后
	var order []string
	for _, g := range resp.Categories {
		order = append(order, g.Category)
	}
	want := []string{"Math", "CS Core", "Tech Electives", "General Education"}
	if len(order) != len(want) {
		t.Fatalf("期望 %d 个分类，实际 %d 个: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("分类顺序第 %d 位期望 %s，实际 %s", i, want[i], order[i])
		}
	}
}

func TestCatalogService_GetCatalog_DBErrorSoftFails(t *testing.T) {
	svc, programRepo, catalogRepo := setupTestCatalogService()
	programRepo.programs["BSCivil"] = &model.Program{ProgramID: "BSCivil"}
	catalogRepo.failWith = errors.New("connection refused")

	resp, err := svc.GetCatalog(context.Background(), "BSCivil")
	if err != nil {
		t.Fatalf("目录加载失败应软降级而非报错: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("软失败应返回零课程目录，实际Total=%d", resp.Total)
	}
}

// ── Entries 测试 ──

func TestCatalogService_Entries_SoftFail(t *testing.T) {
	svc, _, catalogRepo := setupTestCatalogService()
	catalogRepo.failWith = errors.New("timeout")

	entries, err := svc.Entries(context.Background(), "BSComputerScience")
	if err != nil {
		t.Fatalf("Entries 软失败不应返回错误: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("软失败应返回零课程，实际 %d", len(entries))
	}
}

// ── 行提取测试 ──

func TestExtractCourses_SkipsHeaderSentinel(t *testing.T) {
	rows := []dto.RawCourseRow{
		{"Key": "Course Code", "Unnamed: 1": "Course Name"},
		{"Key": "CS 101", "Unnamed: 1": "Intro"},
	}

	courses, resp := extractCourses("BSComputerScience", rows)
	if len(courses) != 1 {
		t.Fatalf("期望 1 门课，实际 %d", len(courses))
	}
	if courses[0].Code != "CS101" {
		t.Errorf("期望Code=CS101，实际=%s", courses[0].Code)
	}
	if resp.Skipped != 1 {
		t.Errorf("表头哨兵行应被跳过，skipped=%d", resp.Skipped)
	}
}

func TestExtractCourses_SkipsEmptyAndDuplicate(t *testing.T) {
	rows := []dto.RawCourseRow{
		{"Key": ""},
		{"Key": "---"},
		{"Key": "CS 101"},
		{"Key": "cs101"}, // 规范化后与上一行重复
	}

	courses, resp := extractCourses("BSComputerScience", rows)
	if len(courses) != 1 {
		t.Fatalf("期望 1 门课，实际 %d", len(courses))
	}
	if resp.Skipped != 3 {
		t.Errorf("期望skipped=3，实际=%d", resp.Skipped)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("重复代码应记录行级错误，实际 %d 条", len(resp.Errors))
	}
}

func TestExtractCourses_PositionalFields(t *testing.T) {
	// 位置式列名数据源："Unnamed: 0" = 代码，"Unnamed: 1" = 名称 …
	rows := []dto.RawCourseRow{
		{"Unnamed: 0": "MAC 2311", "Unnamed: 1": "Calculus 1", "Unnamed: 2": "4", "Unnamed: 8": "Math"},
	}

	courses, _ := extractCourses("BSComputerScience", rows)
	if len(courses) != 1 {
		t.Fatalf("期望 1 门课，实际 %d", len(courses))
	}
	c := courses[0]
	if c.Code != "MAC2311" || c.RawCode != "MAC 2311" {
		t.Errorf("代码提取错误: code=%s raw=%s", c.Code, c.RawCode)
	}
	if c.Name != "Calculus 1" {
		t.Errorf("期望Name=Calculus 1，实际=%s", c.Name)
	}
	if c.Credits != 4 {
		t.Errorf("期望Credits=4，实际=%v", c.Credits)
	}
	if c.Category != "Math" {
		t.Errorf("期望Category=Math，实际=%s", c.Category)
	}
}

func TestExtractCourses_Defaults(t *testing.T) {
	rows := []dto.RawCourseRow{
		{"Key": "XXX 1000"},
	}

	courses, _ := extractCourses("BSComputerScience", rows)
	if len(courses) != 1 {
		t.Fatalf("期望 1 门课，实际 %d", len(courses))
	}
	if courses[0].Credits != 3 {
		t.Errorf("缺省学分应为 3，实际=%v", courses[0].Credits)
	}
	if courses[0].Category != "Other" {
		t.Errorf("缺省分类应为 Other，实际=%s", courses[0].Category)
	}
}

func TestFieldCredits_Invalid(t *testing.T) {
	cases := []struct {
		row  dto.RawCourseRow
		want float64
	}{
		{dto.RawCourseRow{"credits": "4"}, 4},
		{dto.RawCourseRow{"credits": float64(3)}, 3},
		{dto.RawCourseRow{"credits": "abc"}, 3},
		{dto.RawCourseRow{"credits": "-1"}, 3},
		{dto.RawCourseRow{}, 3},
	}
	for _, c := range cases {
		if got := fieldCredits(c.row, creditsFields); got != c.want {
			t.Errorf("fieldCredits(%v) = %v，期望 %v", c.row, got, c.want)
		}
	}
}

// [自证通过] internal/service/catalog_service_test.go
