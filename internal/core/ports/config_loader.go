package ports

import "go.trai.ch/skip/internal/core/domain"

// ConfigLoader loads the declared units of work.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory and
	// returns the declared units in a stable order.
	Load(cwd string) ([]domain.Unit, error)
}
