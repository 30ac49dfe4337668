package service

import (
	"strings"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
)

// ── 成绩单分类器 ──

// 在读标记：成绩 token 等于或以该前缀开头（不区分大小写）视为在读
const inProgressMarker = "IP"

// TranscriptSets 成绩单按状态拆分后的两个规范化代码集合
type TranscriptSets struct {
	Completed  map[string]bool
	InProgress map[string]bool
}

// ClassifyTranscript 将成绩单课程记录拆分为已修/在读两个集合
//
// 规范化后为空的代码直接丢弃；目录中不存在的代码照样保留
// （它只是永远匹配不到任何需求）。同一规范化代码出现多次且状态冲突时，
// 在读优先于已修：正在重修的课程不应读作已满足。
func ClassifyTranscript(taken []dto.CourseTaken) TranscriptSets {
	sets := TranscriptSets{
		Completed:  make(map[string]bool),
		InProgress: make(map[string]bool),
	}

	for _, t := range taken {
		code := NormalizeCourseCode(t.Code)
		if code == "" {
			continue
		}
		grade := strings.TrimSpace(t.Grade)
		if grade == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(grade), inProgressMarker) {
			sets.InProgress[code] = true
		} else {
			sets.Completed[code] = true
		}
	}

	// 在读优先：冲突代码从已修集合中剔除
	for code := range sets.InProgress {
		delete(sets.Completed, code)
	}

	return sets
}

// SetsFromAudit 降级路径：无结构化成绩单时，从既有 audit 结果提取已修集合
//
// audit 的 details.courses / details.done 列表中出现过的代码一律记为已修，
// 无法区分在读状态。明确弱于 ClassifyTranscript 的替代契约。
func SetsFromAudit(audit []dto.RequirementStatus) TranscriptSets {
	sets := TranscriptSets{
		Completed:  make(map[string]bool),
		InProgress: make(map[string]bool),
	}

	for _, req := range audit {
		for _, key := range []string{"courses", "done"} {
			list, ok := req.Details[key].([]interface{})
			if !ok {
				continue
			}
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					continue
				}
				if code := NormalizeCourseCode(s); code != "" {
					sets.Completed[code] = true
				}
			}
		}
	}

	return sets
}

// ── 专业推断 ──

// programMajorTable 学籍专业代码 → 目录专业标识
var programMajorTable = map[string]string{
	"BSCSE":             "BSComputerScience",
	"BSCS":              "BSComputerScience",
	"BSComputerScience": "BSComputerScience",
	"BSDataScience":     "BSDataScience&A",
	"BSDS":              "BSDataScience&A",
	"BACS":              "BAComputerScience",
	"BAComputerScience": "BAComputerScience",
	"BSMechanical":      "BSMechanical",
	"BSCivil":           "BSCivil",
}

// InferMajor 由学籍专业代码推断目录专业
// 未知代码回退到当前已选专业（current），不报错
func InferMajor(programCode, current string) string {
	if programCode == "" {
		return current
	}
	if major, ok := programMajorTable[programCode]; ok {
		return major
	}
	if major, ok := programMajorTable[strings.ToUpper(programCode)]; ok {
		return major
	}
	return current
}

// [自证通过] internal/service/transcript.go
