package postgres

import (
	"database/sql"

	"github.com/whytehoux-projecty/MIS/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles every repository over one connection pool.
type Store struct {
	db *sql.DB

	InterestRequests repository.InterestRequestRepository
	Invitations      repository.InvitationRepository
	QRSessions       repository.QRSessionRepository
	Members          repository.MemberRepository
	Services         repository.RegisteredServiceRepository
	Logins           repository.LoginRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:               db,
		InterestRequests: NewInterestRequestRepository(db),
		Invitations:      NewInvitationRepository(db),
		QRSessions:       NewQRSessionRepository(db),
		Members:          NewMemberRepository(db),
		Services:         NewRegisteredServiceRepository(db),
		Logins:           NewLoginRepository(db),
	}
}
