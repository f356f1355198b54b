package handler

import (
	"github.com/Nishank-123/biller/internal/server"
	"github.com/Nishank-123/biller/internal/service"
)

type Handlers struct {
	Pages  *PagesHandler
	Bill   *BillHandler
	Health *HealthHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Pages:  NewPagesHandler(s),
		Bill:   NewBillHandler(s, services.Bill),
		Health: NewHealthHandler(s),
	}
}
