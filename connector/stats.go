package connector

import "github.com/jackc/pgx/v5/pgxpool"

// ConnectionStats represents connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpen         int
	Acquired        int64
	EmptyAcquires   int64
}

func statsOf(s *pgxpool.Stat) ConnectionStats {
	if s == nil {
		return ConnectionStats{}
	}
	return ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
		MaxOpen:         int(s.MaxConns()),
		Acquired:        s.AcquireCount(),
		EmptyAcquires:   s.EmptyAcquireCount(),
	}
}
