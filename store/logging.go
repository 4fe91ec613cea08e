package store

import "context"

func (s *Store) logAdd(ctx context.Context, r *AddResult) {
	if len(r.Failed) > 0 {
		s.logger.WarnContext(ctx, "batch add completed with failures",
			"total", r.Total,
			"written", r.Written,
			"failed", len(r.Failed),
		)
		return
	}
	s.logger.InfoContext(ctx, "batch add completed", "count", r.Written)
}

func (s *Store) logSearch(ctx context.Context, r *SearchResult) {
	s.logger.DebugContext(ctx, "search completed",
		"targets", len(r.Hits),
		"found", r.Found,
		"missing", len(r.Missing),
		"failed", len(r.Failed),
	)
}
