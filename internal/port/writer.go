package port

import (
	"encoding/json"

	"seppy/internal/domain"
)

type OutputWriter interface {
	WriteTree(dir string, modules []domain.ModuleInfo, graph json.Marshaler) error
}
