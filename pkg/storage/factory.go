package storage

// BackendFactory opens storage backends
type BackendFactory interface {
	// OpenBackend creates the backend described by opts
	OpenBackend(opts Options) (Backend, error)
}

// DefaultBackendFactory is the default implementation of BackendFactory
type DefaultBackendFactory struct{}

// NewBackendFactory creates a new backend factory
func NewBackendFactory() BackendFactory {
	return &DefaultBackendFactory{}
}

// OpenBackend opens a backend with Open
func (f *DefaultBackendFactory) OpenBackend(opts Options) (Backend, error) {
	return Open(opts)
}
