package responder

import (
	"github.com/danmuck/mctp/internal/protocol"
)

// Server resolves requested paths to framed responses. It holds no mutable
// state and is safe for concurrent use.
type Server struct {
	resolver Resolver
	store    DocumentStore
}

func NewServer(routes RouteTable, store DocumentStore) *Server {
	if store == nil {
		store = NewDirStore(".")
	}
	return &Server{
		resolver: NewResolver(routes),
		store:    store,
	}
}

// Exchange is the outcome of one resolved request.
type Exchange struct {
	Path       string
	DocumentID string
	Response   protocol.Response
	// LookupErr is the store failure behind a 404; never written to the wire.
	LookupErr error
}

// Respond resolves path and reads the document it names.
func (s *Server) Respond(path string) Exchange {
	id := s.resolver.Resolve(path)
	ex := Exchange{Path: path, DocumentID: id}

	content, err := s.store.Read(id)
	if err != nil {
		ex.Response = protocol.NotFound()
		ex.LookupErr = err
		return ex
	}
	ex.Response = protocol.Document(content)
	return ex
}
