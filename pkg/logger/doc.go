// Package logger builds structured slog loggers with functional options,
// helper attribute constructors and transparent injection of values stored in
// context.Context.
//
// New creates a *slog.Logger backed by a text or JSON handler. When context
// extractors are registered the handler is wrapped so every record picks up
// request-scoped attributes (for example a request id) at log time.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "robotwatch"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "robots database loaded",
//		logger.Source(path),
//		logger.Count(stats.Robots),
//		logger.Duration(time.Since(start)),
//	)
//
// # Attributes
//
// Helpers in attr.go keep key names consistent across packages. Helpers taking
// optional values (Error, Address, Reputation, ...) return an empty slog.Attr
// for zero input, which slog handlers drop:
//
//	log.Warn("lookup failed", logger.Error(err), logger.Address(ip))
//
// User-Agent strings are logged as hashes only (UserAgentHash).
package logger
