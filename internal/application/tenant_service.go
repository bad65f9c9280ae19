package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// TenantService handles store onboarding
type TenantService struct {
	tenants ports.TenantRepository
	logger  zerolog.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(tenants ports.TenantRepository, logger zerolog.Logger) *TenantService {
	return &TenantService{
		tenants: tenants,
		logger:  logger,
	}
}

// Register creates a PENDING tenant for a store, or returns the existing one
func (s *TenantService) Register(ctx context.Context, storeName, storeURL string) (*domain.Tenant, error) {
	storeURL = NormalizeStoreURL(storeURL)
	if storeURL == "" {
		return nil, errors.New("store URL is required")
	}

	existing, err := s.tenants.FindByStoreURL(ctx, storeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing tenant: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("tenantId", existing.ID).
			Str("storeUrl", storeURL).
			Msg("Tenant already exists, returning existing tenant")
		return existing, nil
	}

	if storeName == "" {
		storeName = strings.TrimSuffix(storeURL, ".myshopify.com")
	}
	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:        uuid.NewString(),
		StoreName: storeName,
		StoreURL:  storeURL,
		Status:    domain.TenantPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create tenant")
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Info().Str("tenantId", tenant.ID).Str("storeUrl", storeURL).Msg("Tenant registered")
	return tenant, nil
}

// Connect stores the Admin API access token obtained by the install flow
func (s *TenantService) Connect(ctx context.Context, tenantID, accessToken string) error {
	if accessToken == "" {
		return errors.New("access token is required")
	}
	if err := s.tenants.AttachCredential(ctx, tenantID, accessToken); err != nil {
		return fmt.Errorf("failed to connect tenant %s: %w", tenantID, err)
	}
	s.logger.Info().Str("tenantId", tenantID).Msg("Tenant connected")
	return nil
}

// NormalizeStoreURL reduces a store URL to its bare host
func NormalizeStoreURL(storeURL string) string {
	u := strings.ToLower(strings.TrimSpace(storeURL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimRight(u, "/")
}
