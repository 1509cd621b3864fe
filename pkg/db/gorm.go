package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sherryseats/orders-backend/pkg/logger"
)

const slowQuery = 500 * time.Millisecond

// GormConfig is shared by the service and the sqlite test databases. With a
// logger, slow queries and driver errors are reported as warnings; without
// one gorm stays silent.
func GormConfig(logg *logger.Logger) *gorm.Config {
	sink := gormlogger.Discard
	if logg != nil {
		sink = gormlogger.New(gormWriter{logg: logg}, gormlogger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		})
	}
	return &gorm.Config{
		Logger:                 sink,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

type gormWriter struct {
	logg *logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logg.Warn(w.logg.WithField(context.Background(), "component", "gorm"), fmt.Sprintf(format, args...))
}
