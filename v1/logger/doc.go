// Package logger provides structured logging on top of Uber's zap.
//
// Components of this module accept the Logger interface; the concrete
// *LoggerClient is produced by NewLoggerClient (or NewNop in tests).
//
// Every logging method takes a message, an optional error and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Debug, ServiceName: "ragcore"})
//	log.Info("PDF ingested", nil, map[string]interface{}{
//		"collection": "ilyan_resume",
//		"chunks":     12,
//	})
//	log.Error("embedding failed", err, nil)
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Info, ServiceName: "ragcore"}
//		}),
//	)
package logger
