package catalog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/domain/material"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// UseCase 物料目录用例
type UseCase struct {
	service material.Service
	log     logrus.FieldLogger
}

// NewUseCase 创建物料目录用例
func NewUseCase(service material.Service, log logrus.FieldLogger) *UseCase {
	return &UseCase{service: service, log: log}
}

// RegisterRequest 登记物料请求DTO
type RegisterRequest struct {
	Name  string `validate:"required,max=100"`
	Unit  string `validate:"omitempty,oneof=kg ton pcs"`
	Class string `validate:"max=50"`
}

// MaterialResponse 物料响应DTO
type MaterialResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Class     string `json:"class,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toMaterialResponse(m *material.Material) *MaterialResponse {
	return &MaterialResponse{
		ID:        m.ID,
		Name:      m.Name,
		Unit:      string(m.Unit),
		Class:     m.Class,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (uc *UseCase) Register(ctx context.Context, req RegisterRequest) (*MaterialResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	m, err := uc.service.Register(ctx, req.Name, material.Unit(req.Unit), req.Class)
	if err != nil {
		logger.LogError(ctx, uc.log, "catalog", "Register", "登记物料失败", req.Name, err)
		return nil, err
	}
	uc.log.WithFields(logrus.Fields{"material_id": m.ID, "name": m.Name}).Info("物料已登记")
	return toMaterialResponse(m), nil
}

func (uc *UseCase) List(ctx context.Context) ([]*MaterialResponse, error) {
	list, err := uc.service.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*MaterialResponse, len(list))
	for i, m := range list {
		out[i] = toMaterialResponse(m)
	}
	return out, nil
}

// Delete 仍被明细或批次引用的物料不能删除
func (uc *UseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.service.Delete(ctx, id); err != nil {
		logger.LogError(ctx, uc.log, "catalog", "Delete", "删除物料失败", id, err)
		return err
	}
	uc.log.WithField("material_id", id).Info("物料已删除")
	return nil
}
