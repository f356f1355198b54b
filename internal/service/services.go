package service

import (
	"fmt"

	"github.com/Nishank-123/biller/internal/lib/job"
	"github.com/Nishank-123/biller/internal/lib/pdf"
	"github.com/Nishank-123/biller/internal/repository"
	"github.com/Nishank-123/biller/internal/server"
)

type Services struct {
	Auth *AuthService
	Bill *BillService
	Job  *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	docs, err := pdf.NewStore(s.Config.Storage.PDFDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf store: %w", err)
	}

	return &Services{
		Auth: NewAuthService(s),
		Bill: NewBillService(s, repos.Bill, docs),
		Job:  s.Job,
	}, nil
}
