package repository

import (
	"github.com/Nishank-123/biller/internal/server"
)

type Repositories struct {
	Bill *BillRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Bill: NewBillRepository(s),
	}
}
