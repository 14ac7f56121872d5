package application

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/asset/domain"
	"github.com/cognikit/cognikit/pkg/apperr"
)

// AssetDTO 资产搜索/详情响应
type AssetDTO struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Market        string  `json:"market"`
	Exchange      *string `json:"exchange"`
	IndexType     *string `json:"indexType"`
	FundCompany   *string `json:"fundCompany"`
	FundType      *string `json:"fundType"`
	PinyinInitial *string `json:"pinyinInitial"`
}

// Service 资产服务层
type Service struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewService 创建资产服务
func NewService(repo domain.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SearchAssets 按代码、名称、拼音或基金公司搜索资产
func (s *Service) SearchAssets(ctx context.Context, params domain.SearchParams) ([]*AssetDTO, error) {
	s.logger.InfoContext(ctx, "searching assets",
		"query", params.Query, "type", params.Type, "market", params.Market, "limit", params.Limit)

	assets, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	dtos := make([]*AssetDTO, 0, len(assets))
	for _, a := range assets {
		dtos = append(dtos, ToAssetDTO(a))
	}
	return dtos, nil
}

// GetAsset 按代理键查询资产详情
func (s *Service) GetAsset(ctx context.Context, id string) (*AssetDTO, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrAssetNotFound
		}
		return nil, err
	}
	return ToAssetDTO(asset), nil
}

// ValidateExists 校验资产是否存在
func (s *Service) ValidateExists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToAssetDTO 转换为对外资产视图
func ToAssetDTO(a *domain.Asset) *AssetDTO {
	var fundType *string
	if a.FundType != nil {
		ft := string(*a.FundType)
		fundType = &ft
	}
	return &AssetDTO{
		ID:            a.ID,
		Symbol:        a.Symbol,
		Name:          a.Name,
		Type:          string(a.Type),
		Market:        string(a.Market),
		Exchange:      a.Exchange,
		IndexType:     a.IndexType,
		FundCompany:   a.FundCompany,
		FundType:      fundType,
		PinyinInitial: a.PinyinInitial,
	}
}
