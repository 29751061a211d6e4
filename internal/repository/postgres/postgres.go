package postgres

import (
	"database/sql"

	"rentzy-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.CancellationRepository
	repository.TransactionRepository
	repository.NotificationRepository
	repository.UserRepository
	repository.VehicleRepository
	repository.CredentialRepository
	repository.ContractRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		CancellationRepository: NewCancellationRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
		VehicleRepository:      NewVehicleRepository(db),
		CredentialRepository:   NewCredentialRepository(db),
		ContractRepository:     NewContractRepository(db),
	}
}
