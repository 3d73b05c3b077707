package services

import (
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Wine = NewWineService(repos.WineRepo)
	container.Participant = NewParticipantService(repos.ParticipantRepo)
	container.Receipt = NewReceiptService(repos.ReceiptRepo, repos.WineRepo, repos.ParticipantRepo)
	container.Location = NewLocationService(repos.LocationRepo, repos.StockRepo)
	container.Stock = NewStockService(repos.StockRepo)
	container.Reservation = NewReservationService(repos.StockRepo, repos.OrderRepo)
	container.Order = NewOrderService(repos.OrderRepo, repos.StockRepo, container.Reservation)
	container.Audit = NewAuditService(repos.AuditRepo)

	return container
}
