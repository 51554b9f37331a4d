package server

import (
	"gorm.io/gorm"

	"github.com/afandal/storeadmin/app/repositories"
	"github.com/afandal/storeadmin/app/routes"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/workerpool"
	"github.com/afandal/storeadmin/pkg/ws"
)

// Wire builds the admin services over client. A nil db keeps the audit
// trail in the log only; a nil pool writes audit entries inline.
func Wire(client *storefront.Client, db *gorm.DB, pool *workerpool.Pool, hub *ws.Hub) (routes.Services, *services.AuditService) {
	var repo *repositories.AuditRepository
	if db != nil {
		repo = repositories.NewAuditRepository(db)
	}
	audit := services.NewAuditService(repo, pool)

	return routes.Services{
		Auth:    services.NewAuthService(client, audit),
		Catalog: services.NewCatalogService(client, audit),
		Offers:  services.NewOfferService(client, audit),
		Orders:  services.NewOrderService(client, audit),
		Hub:     hub,
	}, audit
}
