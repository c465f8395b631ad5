package guard

// CatalogNotTrivialName is the registered name of CatalogNotTrivialGuard.
const CatalogNotTrivialName = "catalog_not_trivial"

// CatalogNotTrivialGuard rejects next when there is nothing to advance to.
type CatalogNotTrivialGuard struct{}

func (g *CatalogNotTrivialGuard) Name() string {
	return CatalogNotTrivialName
}

func (g *CatalogNotTrivialGuard) Description() string {
	return "Checks that the catalog has a successor for the current track"
}

func (g *CatalogNotTrivialGuard) ReturnCodes() []string {
	return []string{"catalog_too_small", "track_not_in_catalog"}
}

func (g *CatalogNotTrivialGuard) AppliesTo(cmd Command) bool {
	return cmd == CommandNext
}

func (g *CatalogNotTrivialGuard) Check(req Request, s Subject) Result {
	if s.Catalog.Len() <= 1 {
		return Reject("catalog_too_small")
	}
	if !s.Catalog.Contains(s.Current) {
		return Reject("track_not_in_catalog")
	}
	return Accept()
}

func init() {
	Register(CatalogNotTrivialName, func() Guard {
		return &CatalogNotTrivialGuard{}
	})
}
