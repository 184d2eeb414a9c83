package engine

import (
	"github.com/jesspatton/lazyremote/api"
)

// CatalogStore holds the last loaded catalog. A load replaces it wholesale;
// a failed load leaves an empty catalog and remembers the error so the
// presentation can offer a retry.
type CatalogStore struct {
	catalog api.Catalog
	loaded  bool
	loading bool
	err     error
}

func newCatalogStore() CatalogStore {
	return CatalogStore{catalog: emptyCatalog()}
}

func emptyCatalog() api.Catalog {
	return api.Catalog{
		TestCases: []api.TestCase{},
		Suites:    map[string]int{},
	}
}

func (s *CatalogStore) replace(c api.Catalog) {
	s.catalog = c
	s.loaded = true
	s.loading = false
	s.err = nil
}

func (s *CatalogStore) fail(err error) {
	s.catalog = emptyCatalog()
	s.loaded = false
	s.loading = false
	s.err = err
}

// Catalog returns the current catalog. It is empty until the first
// successful load.
func (s *CatalogStore) Catalog() api.Catalog {
	return s.catalog
}

// Loaded reports whether the last load succeeded.
func (s *CatalogStore) Loaded() bool {
	return s.loaded
}

// Loading reports whether a load is in flight.
func (s *CatalogStore) Loading() bool {
	return s.loading
}

// Err returns the error from the last load, if it failed.
func (s *CatalogStore) Err() error {
	return s.err
}
