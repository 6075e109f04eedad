package domain

import "context"

// QuoteSource fetches one market snapshot per call
type QuoteSource interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}

// CompanyDirectory resolves a symbol to listed-company metadata.
// Unknown symbols resolve to a company named after the symbol itself.
type CompanyDirectory interface {
	Company(symbol string) ListedCompany
}
