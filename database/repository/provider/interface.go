package providerRepo

import (
	"context"
	"errors"

	"zeena/models"
)

// ErrNotFound is returned when a provider id does not exist.
var ErrNotFound = errors.New("provider not found")

// ProviderRepository gives the booking engine read access to provider
// schedules and service catalogues. Provider mutation belongs to the
// provider-profile collaborator; the engine only validates schedules on its
// behalf (ValidateSchedule) and reads them here.
type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
}
