package contracts

import "github.com/julienschmidt/httprouter"

// Handler is what the application bootstrap mounts on its router. Both the
// rooms and allocations services implement it.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
